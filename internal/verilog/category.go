package verilog

// Category is the tag assigned to a piece of Verilog text by Classify.
type Category string

const (
	And            Category = "and"
	Or             Category = "or"
	Not            Category = "not"
	Nand           Category = "nand"
	Nor            Category = "nor"
	Xor            Category = "xor"
	Xnor           Category = "xnor"
	HalfAdder      Category = "half_adder"
	FullAdder      Category = "full_adder"
	ALU            Category = "alu_simple"
	Comparator2Bit Category = "comparator_2bit"
	Comparator4Bit Category = "comparator_4bit"
	Encoder4to2    Category = "encoder_4to2"
	Decoder2to4    Category = "decoder_2to4"
	Decoder1to4    Category = "decoder_1to4"
	Mux2to1        Category = "mux"
	Mux4to1        Category = "mux_4to1"
	DFlipFlop      Category = "d_flipflop"
	DLatch         Category = "d_latch"
	SRLatch        Category = "sr_latch"
	JKFlipFlop     Category = "jk_flipflop"
	TFlipFlop      Category = "t_flipflop"
	Counter4Bit    Category = "counter_4bit"
	CounterUpDown  Category = "counter_updown"
	FSM            Category = "fsm_template"
	Unknown        Category = "unknown"
)

var displayNames = map[Category]string{
	And:            "AND Gate",
	Or:             "OR Gate",
	Not:            "NOT Gate",
	Nand:           "NAND Gate",
	Nor:            "NOR Gate",
	Xor:            "XOR Gate",
	Xnor:           "XNOR Gate",
	HalfAdder:      "Half Adder",
	FullAdder:      "Full Adder",
	ALU:            "Simple ALU",
	Comparator2Bit: "2-bit Comparator",
	Comparator4Bit: "4-bit Comparator",
	Encoder4to2:    "Priority Encoder (4→2)",
	Decoder2to4:    "Decoder (2→4)",
	Decoder1to4:    "Decoder (1→4)",
	Mux2to1:        "Multiplexer (2→1)",
	Mux4to1:        "Multiplexer (4→1)",
	DFlipFlop:      "D Flip-Flop",
	DLatch:         "Transparent D Latch",
	SRLatch:        "SR Latch",
	JKFlipFlop:     "JK Flip-Flop",
	TFlipFlop:      "T Flip-Flop",
	Counter4Bit:    "4-bit Counter",
	CounterUpDown:  "Up/Down Counter",
	FSM:            "FSM Template",
	Unknown:        "Circuit Preview",
}

// supported lists every concrete category in catalogue order:
// gates, arithmetic, routing, sequential.
var supported = []Category{
	And, Or, Not, Nand, Nor, Xor, Xnor,
	HalfAdder, FullAdder, ALU, Comparator2Bit, Comparator4Bit,
	Encoder4to2, Decoder2to4, Decoder1to4, Mux2to1, Mux4to1,
	DFlipFlop, DLatch, SRLatch, JKFlipFlop, TFlipFlop,
	Counter4Bit, CounterUpDown, FSM,
}

// DisplayName returns the human-readable title for c.
// Unrecognized tags get the unknown title.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return displayNames[Unknown]
}

// Valid reports whether c is a known tag (including Unknown).
func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// Supported returns every concrete category (Unknown excluded).
func Supported() []Category {
	out := make([]Category, len(supported))
	copy(out, supported)
	return out
}

// ParseCategory returns the category for tag, or Unknown and false.
func ParseCategory(tag string) (Category, bool) {
	c := Category(tag)
	if c.Valid() {
		return c, true
	}
	return Unknown, false
}
