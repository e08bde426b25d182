package verilog

// rule maps a predicate over the prepared text to a category.
type rule struct {
	category Category
	match    func(Forms) bool
}

// rules is evaluated in order and the first match wins. Specific patterns
// precede general ones: decoders before muxes, comparator_2bit before
// comparator_4bit, mux_4to1 before mux, XNOR before XOR, NAND/NOR before
// AND/OR. Keep that ordering when adding rules.
var rules = []rule{
	{Encoder4to2, func(f Forms) bool {
		return f.HasModule("priority_encoder_4to2") || f.Contains("encoder_4to2", "priority_encoder")
	}},
	{Decoder1to4, func(f Forms) bool {
		return f.HasModule("decoder_1to4") || f.Contains("decoder 1:4", "decoder1to4", "demux1to4")
	}},
	{Decoder2to4, func(f Forms) bool {
		return f.HasModule("decoder_2to4") || f.Contains("decoder 2:4")
	}},
	{ALU, func(f Forms) bool {
		return f.HasModule("simple_alu") || (f.Contains("alu") && f.Contains("op", "operation"))
	}},
	{Comparator2Bit, func(f Forms) bool {
		return f.Contains("comparator2", "2-bit comparator", "2bit comparator") || f.HasModule("comparator_2bit")
	}},
	{Comparator4Bit, func(f Forms) bool {
		return f.Contains("comparator", "compare")
	}},
	{Mux4to1, func(f Forms) bool {
		return f.Contains("4:1 mux", "mux4to1", "4to1 mux") || f.HasModule("mux4to1")
	}},
	{Mux2to1, func(f Forms) bool {
		return f.Contains("mux")
	}},
	{Xnor, func(f Forms) bool {
		return f.HasModule("xnor_gate") ||
			f.HasExpr("assign y = ~(a ^ b)") ||
			f.HasExpr("assign y = ~(a^b)") ||
			f.HasExpr("assign y = a ~^ b") ||
			f.HasExprCompact("assign y=a~^b")
	}},
	{Xor, func(f Forms) bool {
		return f.HasModule("xor_gate") ||
			f.HasExpr("assign y = a ^ b") ||
			f.HasExpr("assign y = a^b") ||
			f.HasExprCompact("assign y=a^b")
	}},
	{Nand, func(f Forms) bool {
		return f.HasModule("nand_gate") ||
			f.HasExpr("assign y = ~(a & b)") ||
			f.HasExpr("assign y = ~(a&b)") ||
			f.HasExprCompact("assign y=~(a&b)")
	}},
	{Nor, func(f Forms) bool {
		return f.HasModule("nor_gate") ||
			f.HasExpr("assign y = ~(a | b)") ||
			f.HasExpr("assign y = ~(a|b)") ||
			f.HasExprCompact("assign y=~(a|b)")
	}},
	{And, func(f Forms) bool {
		return f.HasModule("and_gate") || f.HasExpr("assign y = a & b") || f.HasExprCompact("assign y=a&b")
	}},
	{Or, func(f Forms) bool {
		return f.HasModule("or_gate") || f.HasExpr("assign y = a | b") || f.HasExprCompact("assign y=a|b")
	}},
	{Not, func(f Forms) bool {
		return f.HasModule("not_gate") || f.Contains("~a")
	}},
	{DFlipFlop, func(f Forms) bool {
		return f.Contains("d flip") || f.HasModule("d_flipflop") || f.HasModule("dff")
	}},
	{DLatch, func(f Forms) bool {
		return f.Contains("d latch", "transparent latch") || f.HasModule("d_latch")
	}},
	{SRLatch, func(f Forms) bool {
		return f.Contains("sr latch", "set reset latch") || f.HasModule("sr_latch")
	}},
	{JKFlipFlop, func(f Forms) bool {
		return f.Contains("jk flip") || f.HasModule("jk_flipflop") || f.HasModule("jkff")
	}},
	{TFlipFlop, func(f Forms) bool {
		return f.Contains("t flip") || f.HasModule("t_flipflop") || f.HasModule("tff")
	}},
	{CounterUpDown, func(f Forms) bool {
		return f.Contains("up down counter") || f.HasModule("up_down_counter")
	}},
	{Counter4Bit, func(f Forms) bool {
		return f.Contains("4-bit counter", "4bit counter") || f.HasModule("counter4")
	}},
	{FSM, func(f Forms) bool {
		return f.Contains("fsm") || (f.Contains("state") && f.Contains("next_state"))
	}},
	{HalfAdder, func(f Forms) bool {
		return f.Contains("half_adder")
	}},
	{FullAdder, func(f Forms) bool {
		return f.Contains("full_adder")
	}},
}

// Classify returns the category of the first rule that matches code, or
// Unknown. It is a pure function: total, deterministic and side-effect free.
func Classify(code string) Category {
	f := Prepare(code)
	for _, r := range rules {
		if r.match(f) {
			return r.category
		}
	}
	return Unknown
}

// Explain returns the category together with the zero-based index of the
// rule that produced it (-1 for Unknown).
func Explain(code string) (Category, int) {
	f := Prepare(code)
	for i, r := range rules {
		if r.match(f) {
			return r.category, i
		}
	}
	return Unknown, -1
}
