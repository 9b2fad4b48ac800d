package netlist

import (
	"fmt"
	"strconv"
)

// registerStandardModels populates d with the fixed library of iCE40
// primitives a BLIF netlist can instantiate: the post-pack logic cell
// (ICESTORM_LC), the I/O and global-buffer family, LUT4/CARRY (the
// pre-pack primitives packing consumes), the full SB_DFF* flip-flop
// family, block RAM, PLL, and the miscellaneous hard macros (oscillators,
// SPRAM, MAC16, RGBA driver, I2C/SPI, WARMBOOT, LED driver) together with
// the tristate buffer placeholder used for `inout`/tristate nets.
func registerStandardModels(d *Design) {
	addLC(d)
	addIOFamily(d)
	addLUT4AndCarry(d)
	addDFFFamily(d)
	addBRAMFamily(d)
	addPLLFamily(d)
	addMiscHardMacros(d)
}

func addPortIn(m *Model, name string)                    { m.AddPortDefault(name, In, Zero) }
func addPortInDefault(m *Model, name string, u Value)     { m.AddPortDefault(name, In, u) }
func addPortOut(m *Model, name string)                    { m.AddPort(name, Out) }
func addPortInout(m *Model, name string)                  { m.AddPortDefault(name, Inout, X) }

func setParamZero(m *Model, name string, width int) { m.SetParam(name, BitsConst(NewBitVector(width, 0))) }
func setParamStr(m *Model, name, val string)        { m.SetParam(name, StringConst(val)) }

// addLC registers ICESTORM_LC, the single post-pack primitive every
// LUT4/CARRY/DFF triple collapses into: four LUT inputs, a carry chain,
// a clock/enable/set-reset triple, and the slice's two outputs (combout,
// registered out).
func addLC(d *Design) {
	lc := d.newModel("ICESTORM_LC")
	addPortIn(lc, "I0")
	addPortIn(lc, "I1")
	addPortIn(lc, "I2")
	addPortIn(lc, "I3")
	addPortIn(lc, "CIN")
	addPortIn(lc, "CLK")
	addPortInDefault(lc, "CEN", One)
	addPortIn(lc, "SR")
	addPortOut(lc, "LO")
	addPortOut(lc, "O")
	addPortOut(lc, "COUT")

	setParamZero(lc, "LUT_INIT", 16)
	setParamZero(lc, "NEG_CLK", 1)
	setParamZero(lc, "CARRY_ENABLE", 1)
	setParamZero(lc, "DFF_ENABLE", 1)
	setParamZero(lc, "SET_NORESET", 1)
	setParamZero(lc, "ASYNC_SR", 1)
	setParamZero(lc, "CIN_CONST", 1)
	setParamZero(lc, "CIN_SET", 1)
}

func addIOFamily(d *Design) {
	ioLike := func(name string, extra func(*Model)) *Model {
		m := d.newModel(name)
		addPortInout(m, "PACKAGE_PIN")
		addPortInDefault(m, "LATCH_INPUT_VALUE", Zero)
		addPortInDefault(m, "CLOCK_ENABLE", One)
		addPortInDefault(m, "INPUT_CLK", Zero)
		addPortInDefault(m, "OUTPUT_CLK", Zero)
		addPortInDefault(m, "OUTPUT_ENABLE", Zero)
		addPortInDefault(m, "D_OUT_0", Zero)
		addPortInDefault(m, "D_OUT_1", Zero)
		addPortOut(m, "D_IN_0")
		addPortOut(m, "D_IN_1")
		if extra != nil {
			extra(m)
		}
		setParamStr(m, "PIN_TYPE", "000000")
		setParamStr(m, "IO_STANDARD", "SB_LVCMOS")
		setParamZero(m, "NEG_TRIGGER", 1)
		return m
	}

	ioLike("SB_IO", nil)

	gb := d.newModel("SB_GB")
	addPortIn(gb, "USER_SIGNAL_TO_GLOBAL_BUFFER")
	addPortOut(gb, "GLOBAL_BUFFER_OUTPUT")

	gbIO := d.newModel("SB_GB_IO")
	addPortInout(gbIO, "PACKAGE_PIN")
	addPortOut(gbIO, "GLOBAL_BUFFER_OUTPUT")
	addPortInDefault(gbIO, "LATCH_INPUT_VALUE", Zero)
	addPortInDefault(gbIO, "CLOCK_ENABLE", One)
	addPortInDefault(gbIO, "INPUT_CLK", Zero)
	addPortInDefault(gbIO, "OUTPUT_CLK", Zero)
	addPortInDefault(gbIO, "OUTPUT_ENABLE", Zero)
	addPortInDefault(gbIO, "D_OUT_0", Zero)
	addPortInDefault(gbIO, "D_OUT_1", Zero)
	addPortOut(gbIO, "D_IN_0")
	addPortOut(gbIO, "D_IN_1")
	setParamStr(gbIO, "PIN_TYPE", "000000")
	setParamStr(gbIO, "IO_STANDARD", "SB_LVCMOS")
	setParamZero(gbIO, "NEG_TRIGGER", 1)

	ioLike("SB_IO_I3C", func(m *Model) {
		addPortInDefault(m, "PU_ENB", Zero)
		addPortInDefault(m, "WEAK_PU_ENB", Zero)
	})

	ioLike("SB_IO_OD", nil)
	ioLike("SB_IO_OD_A", nil)
}

func addLUT4AndCarry(d *Design) {
	lut4 := d.newModel("SB_LUT4")
	addPortOut(lut4, "O")
	addPortIn(lut4, "I0")
	addPortIn(lut4, "I1")
	addPortIn(lut4, "I2")
	addPortIn(lut4, "I3")
	setParamZero(lut4, "LUT_INIT", 16)

	carry := d.newModel("SB_CARRY")
	addPortOut(carry, "CO")
	addPortIn(carry, "I0")
	addPortIn(carry, "I1")
	addPortIn(carry, "CI")
}

// addDFFFamily registers every SB_DFF{N}{E}{SR|R|SS|S} combination: clock
// polarity, clock enable, and set/reset flavor are each optional and
// spelled into the model name, exactly as the bitstream's DFF suffix
// decode table expects.
func addDFFFamily(d *Design) {
	for negClk := 0; negClk <= 1; negClk++ {
		for cen := 0; cen <= 1; cen++ {
			for sr := 0; sr <= 4; sr++ {
				name := "SB_DFF"
				if negClk == 1 {
					name += "N"
				}
				if cen == 1 {
					name += "E"
				}
				switch sr {
				case 1:
					name += "SR"
				case 2:
					name += "R"
				case 3:
					name += "SS"
				case 4:
					name += "S"
				}

				dff := d.newModel(name)
				addPortOut(dff, "Q")
				addPortIn(dff, "C")
				if cen == 1 {
					addPortInDefault(dff, "E", One)
				}
				switch sr {
				case 1, 2:
					addPortIn(dff, "R")
				case 3, 4:
					addPortIn(dff, "S")
				}
				addPortIn(dff, "D")
			}
		}
	}
}

// addBRAMFamily registers the four SB_RAM40_4K{,NR,NW,NRNW} variants: the
// NR/NW suffixes select a negative-edge read/write clock respectively.
func addBRAMFamily(d *Design) {
	for nr := 0; nr <= 1; nr++ {
		for nw := 0; nw <= 1; nw++ {
			name := "SB_RAM40_4K"
			if nr == 1 {
				name += "NR"
			}
			if nw == 1 {
				name += "NW"
			}
			bram := d.newModel(name)
			for i := 0; i <= 15; i++ {
				addPortOut(bram, fmt.Sprintf("RDATA[%d]", i))
			}
			for i := 0; i <= 10; i++ {
				addPortIn(bram, fmt.Sprintf("RADDR[%d]", i))
			}
			for i := 0; i <= 10; i++ {
				addPortIn(bram, fmt.Sprintf("WADDR[%d]", i))
			}
			for i := 0; i <= 15; i++ {
				addPortIn(bram, fmt.Sprintf("MASK[%d]", i))
			}
			for i := 0; i <= 15; i++ {
				addPortIn(bram, fmt.Sprintf("WDATA[%d]", i))
			}
			addPortInDefault(bram, "RCLKE", One)
			if nr == 1 {
				addPortIn(bram, "RCLKN")
			} else {
				addPortIn(bram, "RCLK")
			}
			addPortIn(bram, "RE")
			addPortInDefault(bram, "WCLKE", One)
			if nw == 1 {
				addPortIn(bram, "WCLKN")
			} else {
				addPortIn(bram, "WCLK")
			}
			addPortIn(bram, "WE")

			for i := 0; i <= 15; i++ {
				setParamZero(bram, "INIT_"+hexDigit(i), 256)
			}
			setParamZero(bram, "READ_MODE", 2)
			setParamZero(bram, "WRITE_MODE", 2)
		}
	}
}

func hexDigit(i int) string {
	const digits = "0123456789ABCDEF"
	return string(digits[i])
}

func addDynamicDelayPorts(m *Model) {
	for i := 0; i < 8; i++ {
		addPortIn(m, fmt.Sprintf("DYNAMICDELAY[%d]", i))
	}
}

func addPLLCommonParams(m *Model) {
	setParamStr(m, "FEEDBACK_PATH", "SIMPLE")
	setParamStr(m, "DELAY_ADJUSTMENT_MODE_FEEDBACK", "FIXED")
	setParamZero(m, "FDA_FEEDBACK", 4)
	setParamStr(m, "DELAY_ADJUSTMENT_MODE_RELATIVE", "FIXED")
	setParamZero(m, "FDA_RELATIVE", 4)
	setParamZero(m, "SHIFTREG_DIV_MODE", 1)
	setParamZero(m, "DIVR", 4)
	setParamZero(m, "DIVF", 7)
	setParamZero(m, "DIVQ", 3)
	setParamZero(m, "FILTER_RANGE", 3)
	m.SetParam("EXTERNAL_DIVIDE_FACTOR", BitsConst(NewBitVector(32, 1)))
}

func addPLLFamily(d *Design) {
	core := d.newModel("SB_PLL40_CORE")
	addPortIn(core, "REFERENCECLK")
	addPortIn(core, "RESETB")
	addPortIn(core, "BYPASS")
	addPortIn(core, "EXTFEEDBACK")
	addDynamicDelayPorts(core)
	addPortIn(core, "LATCHINPUTVALUE")
	addPortIn(core, "SCLK")
	addPortIn(core, "SDI")
	addPortIn(core, "SDO")
	addPortOut(core, "LOCK")
	addPortOut(core, "PLLOUTGLOBAL")
	addPortOut(core, "PLLOUTCORE")
	addPLLCommonParams(core)
	setParamStr(core, "PLLOUT_SELECT", "GENCLK")
	setParamZero(core, "ENABLE_ICEGATE", 1)

	pad := d.newModel("SB_PLL40_PAD")
	addPortIn(pad, "PACKAGEPIN")
	addPortIn(pad, "RESETB")
	addPortIn(pad, "BYPASS")
	addPortIn(pad, "EXTFEEDBACK")
	addDynamicDelayPorts(pad)
	addPortIn(pad, "LATCHINPUTVALUE")
	addPortIn(pad, "SCLK")
	addPortIn(pad, "SDI")
	addPortIn(pad, "SDO")
	addPortOut(pad, "LOCK")
	addPortOut(pad, "PLLOUTGLOBAL")
	addPortOut(pad, "PLLOUTCORE")
	addPLLCommonParams(pad)
	setParamStr(pad, "PLLOUT_SELECT", "GENCLK")
	setParamZero(pad, "ENABLE_ICEGATE", 1)

	twoPort := func(name string) *Model {
		m := d.newModel(name)
		addPortIn(m, "PACKAGEPIN")
		addPortIn(m, "RESETB")
		addPortIn(m, "BYPASS")
		addPortIn(m, "EXTFEEDBACK")
		addDynamicDelayPorts(m)
		addPortIn(m, "LATCHINPUTVALUE")
		addPortIn(m, "SCLK")
		addPortIn(m, "SDI")
		addPortIn(m, "SDO")
		addPortOut(m, "LOCK")
		addPortOut(m, "PLLOUTGLOBALA")
		addPortOut(m, "PLLOUTCOREA")
		addPortOut(m, "PLLOUTGLOBALB")
		addPortOut(m, "PLLOUTCOREB")
		addPLLCommonParams(m)
		setParamStr(m, "PLLOUT_SELECT_PORTA", "GENCLK")
		setParamStr(m, "PLLOUT_SELECT_PORTB", "GENCLK")
		setParamZero(m, "ENABLE_ICEGATE_PORTA", 1)
		setParamZero(m, "ENABLE_ICEGATE_PORTB", 1)
		return m
	}
	twoPort("SB_PLL40_2_PAD")
	twoPort("SB_PLL40_2F_CORE")
	twoPort("SB_PLL40_2F_PAD")
}

func addMiscHardMacros(d *Design) {
	warmboot := d.newModel("SB_WARMBOOT")
	addPortIn(warmboot, "BOOT")
	addPortIn(warmboot, "S1")
	addPortIn(warmboot, "S0")

	tbuf := d.newModel("$_TBUF_")
	addPortIn(tbuf, "A")
	addPortIn(tbuf, "E")
	addPortOut(tbuf, "Y")

	mac16 := d.newModel("SB_MAC16")
	addPortIn(mac16, "CLK")
	addPortInDefault(mac16, "CE", One)
	for i := 0; i < 16; i++ {
		s := strconv.Itoa(i)
		addPortIn(mac16, "C["+s+"]")
		addPortIn(mac16, "A["+s+"]")
		addPortIn(mac16, "B["+s+"]")
		addPortIn(mac16, "D["+s+"]")
	}
	for _, p := range []string{
		"AHOLD", "BHOLD", "CHOLD", "DHOLD", "IRSTTOP", "IRSTBOT",
		"ORSTTOP", "ORSTBOT", "OLOADTOP", "OLOADBOT",
		"ADDSUBTOP", "ADDSUBBOT", "OHOLDTOP", "OHOLDBOT",
		"CI", "ACCUMCI", "SIGNEXTIN",
	} {
		addPortIn(mac16, p)
	}
	for i := 0; i < 32; i++ {
		addPortOut(mac16, fmt.Sprintf("O[%d]", i))
	}
	addPortOut(mac16, "CO")
	addPortOut(mac16, "ACCUMCO")
	addPortOut(mac16, "SIGNEXTOUT")
	for _, p := range []struct {
		name  string
		width int
	}{
		{"C_REG", 1}, {"A_REG", 1}, {"B_REG", 1}, {"D_REG", 1},
		{"TOP_8x8_MULT_REG", 1}, {"BOT_8x8_MULT_REG", 1},
		{"PIPELINE_16x16_MULT_REG1", 1}, {"PIPELINE_16x16_MULT_REG2", 1},
		{"TOPOUTPUT_SELECT", 2}, {"TOPADDSUB_LOWERINPUT", 2},
		{"TOPADDSUB_UPPERINPUT", 1}, {"TOPADDSUB_CARRYSELECT", 2},
		{"BOTOUTPUT_SELECT", 2}, {"BOTADDSUB_LOWERINPUT", 2},
		{"BOTADDSUB_UPPERINPUT", 1}, {"BOTADDSUB_CARRYSELECT", 2},
		{"MODE_8x8", 1}, {"A_SIGNED", 1}, {"B_SIGNED", 1},
	} {
		setParamZero(mac16, p.name, p.width)
	}

	hfosc := d.newModel("SB_HFOSC")
	addPortIn(hfosc, "CLKHFPU")
	addPortIn(hfosc, "CLKHFEN")
	addPortOut(hfosc, "CLKHF")
	setParamStr(hfosc, "CLKHF_DIV", "0b00")

	hfoscTrim := d.newModel("SB_HFOSC_TRIM")
	addPortIn(hfoscTrim, "CLKHFPU")
	addPortIn(hfoscTrim, "CLKHFEN")
	for i := 0; i < 10; i++ {
		addPortIn(hfoscTrim, "TRIM"+strconv.Itoa(i))
	}
	addPortOut(hfoscTrim, "CLKHF")
	setParamStr(hfoscTrim, "CLKHF_DIV", "0b00")

	lfosc := d.newModel("SB_LFOSC")
	addPortIn(lfosc, "CLKLFPU")
	addPortIn(lfosc, "CLKLFEN")
	addPortOut(lfosc, "CLKLF")

	spram := d.newModel("SB_SPRAM256KA")
	for i := 0; i < 14; i++ {
		addPortIn(spram, "ADDRESS["+strconv.Itoa(i)+"]")
	}
	for i := 0; i < 16; i++ {
		addPortIn(spram, "DATAIN["+strconv.Itoa(i)+"]")
	}
	for i := 0; i < 4; i++ {
		addPortIn(spram, "MASKWREN["+strconv.Itoa(i)+"]")
	}
	addPortIn(spram, "WREN")
	addPortIn(spram, "CHIPSELECT")
	addPortIn(spram, "CLOCK")
	addPortIn(spram, "STANDBY")
	addPortIn(spram, "SLEEP")
	addPortIn(spram, "POWEROFF")
	for i := 0; i < 16; i++ {
		addPortOut(spram, "DATAOUT["+strconv.Itoa(i)+"]")
	}

	rgba := d.newModel("SB_RGBA_DRV")
	addPortIn(rgba, "CURREN")
	addPortIn(rgba, "RGBLEDEN")
	addPortIn(rgba, "RGB0PWM")
	addPortIn(rgba, "RGB1PWM")
	addPortIn(rgba, "RGB2PWM")
	addPortOut(rgba, "RGB0")
	addPortOut(rgba, "RGB1")
	addPortOut(rgba, "RGB2")
	setParamStr(rgba, "CURRENT_MODE", "0b0")
	setParamStr(rgba, "RGB0_CURRENT", "0b000000")
	setParamStr(rgba, "RGB1_CURRENT", "0b000000")
	setParamStr(rgba, "RGB2_CURRENT", "0b000000")

	sbBus := func(name string) *Model {
		m := d.newModel(name)
		addPortIn(m, "SBCLKI")
		addPortIn(m, "SBRWI")
		addPortIn(m, "SBSTBI")
		for i := 0; i < 8; i++ {
			addPortIn(m, "SBADRI"+strconv.Itoa(i))
		}
		for i := 0; i < 8; i++ {
			addPortIn(m, "SBDATI"+strconv.Itoa(i))
		}
		for i := 0; i < 8; i++ {
			addPortOut(m, "SBDATO"+strconv.Itoa(i))
		}
		addPortOut(m, "SBACKO")
		return m
	}

	i2c := sbBus("SB_I2C")
	addPortOut(i2c, "I2CIRQ")
	addPortOut(i2c, "I2CWKUP")
	addPortIn(i2c, "SCLI")
	addPortOut(i2c, "SCLO")
	addPortOut(i2c, "SCLOE")
	addPortIn(i2c, "SDAI")
	addPortOut(i2c, "SDAO")
	addPortOut(i2c, "SDAOE")
	setParamStr(i2c, "BUS_ADDR74", "0b0001")

	spi := sbBus("SB_SPI")
	addPortOut(spi, "SPIIRQ")
	addPortOut(spi, "SPIWKUP")
	addPortIn(spi, "MI")
	addPortOut(spi, "SO")
	addPortOut(spi, "SOE")
	addPortIn(spi, "SI")
	addPortOut(spi, "MO")
	addPortOut(spi, "MOE")
	addPortIn(spi, "SCKI")
	addPortOut(spi, "SCKO")
	addPortOut(spi, "SCKOE")
	addPortIn(spi, "SCSNI")
	for i := 0; i < 4; i++ {
		addPortOut(spi, "MCSNO"+strconv.Itoa(i))
	}
	for i := 0; i < 4; i++ {
		addPortOut(spi, "MCSNOE"+strconv.Itoa(i))
	}
	setParamStr(spi, "BUS_ADDR74", "0b0000")

	ledda := d.newModel("SB_LEDDA_IP")
	addPortIn(ledda, "LEDDCS")
	addPortIn(ledda, "LEDDCLK")
	for i := 7; i >= 0; i-- {
		addPortIn(ledda, "LEDDDAT"+strconv.Itoa(i))
	}
	for i := 3; i >= 0; i-- {
		addPortIn(ledda, "LEDDADDR"+strconv.Itoa(i))
	}
	addPortIn(ledda, "LEDDDEN")
	addPortIn(ledda, "LEDDEXE")
	addPortIn(ledda, "LEDDRST")
	addPortOut(ledda, "PWMOUT0")
	addPortOut(ledda, "PWMOUT1")
	addPortOut(ledda, "PWMOUT2")
	addPortOut(ledda, "LEDDON")
}

// Models is a cached lookup of the standard models a pipeline stage
// needs most often, built once per Design so packing/global/placement
// don't repeatedly hash-lookup the same dozen names by string.
type Models struct {
	LUT4, Carry, LC                   *Model
	IO, GB, GBIO, IOI3C, IOOD         *Model
	RAM, RAMNR, RAMNW, RAMNRNW        *Model
	Warmboot, TBuf                    *Model
}

func NewModels(d *Design) *Models {
	return &Models{
		LUT4:     d.FindModel("SB_LUT4"),
		Carry:    d.FindModel("SB_CARRY"),
		LC:       d.FindModel("ICESTORM_LC"),
		IO:       d.FindModel("SB_IO"),
		GB:       d.FindModel("SB_GB"),
		GBIO:     d.FindModel("SB_GB_IO"),
		IOI3C:    d.FindModel("SB_IO_I3C"),
		IOOD:     d.FindModel("SB_IO_OD_A"),
		RAM:      d.FindModel("SB_RAM40_4K"),
		RAMNR:    d.FindModel("SB_RAM40_4KNR"),
		RAMNW:    d.FindModel("SB_RAM40_4KNW"),
		RAMNRNW:  d.FindModel("SB_RAM40_4KNRNW"),
		Warmboot: d.FindModel("SB_WARMBOOT"),
		TBuf:     d.FindModel("$_TBUF_"),
	}
}

func (i *Instance) IsLUT4() bool  { return i.instanceOf.name == "SB_LUT4" }
func (i *Instance) IsCarry() bool { return i.instanceOf.name == "SB_CARRY" }
func (i *Instance) IsLC() bool    { return i.instanceOf.name == "ICESTORM_LC" }
func (i *Instance) IsIO() bool {
	switch i.instanceOf.name {
	case "SB_IO", "SB_GB_IO", "SB_IO_I3C", "SB_IO_OD", "SB_IO_OD_A":
		return true
	default:
		return false
	}
}
func (i *Instance) IsGB() bool {
	return i.instanceOf.name == "SB_GB" || i.instanceOf.name == "SB_GB_IO"
}
func (i *Instance) IsRAM() bool {
	switch i.instanceOf.name {
	case "SB_RAM40_4K", "SB_RAM40_4KNR", "SB_RAM40_4KNW", "SB_RAM40_4KNRNW":
		return true
	default:
		return false
	}
}

// IsDFF reports whether this instance is one of the 20 SB_DFF* variants.
func (i *Instance) IsDFF() bool {
	switch i.instanceOf.name {
	case "SB_DFF", "SB_DFFN", "SB_DFFE", "SB_DFFNE",
		"SB_DFFSR", "SB_DFFR", "SB_DFFSS", "SB_DFFS",
		"SB_DFFNSR", "SB_DFFNR", "SB_DFFNSS", "SB_DFFNS",
		"SB_DFFESR", "SB_DFFER", "SB_DFFESS", "SB_DFFES",
		"SB_DFFNESR", "SB_DFFNER", "SB_DFFNESS", "SB_DFFNES":
		return true
	default:
		return false
	}
}

func (i *Instance) IsGBIO() bool   { return i.instanceOf.name == "SB_GB_IO" }
func (i *Instance) IsIOI3C() bool  { return i.instanceOf.name == "SB_IO_I3C" }
func (i *Instance) IsIOOD() bool   { return i.instanceOf.name == "SB_IO_OD" || i.instanceOf.name == "SB_IO_OD_A" }
func (i *Instance) IsWarmboot() bool { return i.instanceOf.name == "SB_WARMBOOT" }
func (i *Instance) IsMAC16() bool  { return i.instanceOf.name == "SB_MAC16" }
func (i *Instance) IsSPRAM() bool  { return i.instanceOf.name == "SB_SPRAM256KA" }
func (i *Instance) IsHFOSC() bool  { return i.instanceOf.name == "SB_HFOSC" || i.instanceOf.name == "SB_HFOSC_TRIM" }
func (i *Instance) IsLFOSC() bool  { return i.instanceOf.name == "SB_LFOSC" }
func (i *Instance) IsRGBADrv() bool { return i.instanceOf.name == "SB_RGBA_DRV" }
func (i *Instance) IsLEDDAIP() bool { return i.instanceOf.name == "SB_LEDDA_IP" }
func (i *Instance) IsI2C() bool    { return i.instanceOf.name == "SB_I2C" }
func (i *Instance) IsSPI() bool    { return i.instanceOf.name == "SB_SPI" }

// IsPLL reports whether this instance is one of the five SB_PLL40_*
// variants (CORE, PAD, 2_PAD, 2F_CORE, 2F_PAD).
func (i *Instance) IsPLL() bool {
	switch i.instanceOf.name {
	case "SB_PLL40_CORE", "SB_PLL40_PAD", "SB_PLL40_2_PAD", "SB_PLL40_2F_CORE", "SB_PLL40_2F_PAD":
		return true
	default:
		return false
	}
}
