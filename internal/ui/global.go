package ui

// Config holds the output settings shared by every command. Set once
// from the persistent flags before any command runs.
type Config struct {
	NoColor        bool
	NoEmoji        bool
	Yes            bool
	NonInteractive bool
	Verbose        bool
	Quiet          bool
}

var global Config

// InitGlobal records the process-wide output settings.
func InitGlobal(cfg Config) { global = cfg }

// NewColorConfigFromGlobal builds a ColorConfig honoring the recorded
// --no-color and --no-emoji flags.
func NewColorConfigFromGlobal() *ColorConfig {
	c := NewColorConfig()
	c.Enabled = c.Enabled && !global.NoColor
	c.EmojiEnabled = c.EmojiEnabled && !global.NoEmoji
	return c
}

// NewPrinterFromGlobal builds a Printer for the given output format
// with the recorded color settings.
func NewPrinterFromGlobal(format string) Printer {
	return Printer{format: format, Colors: NewColorConfigFromGlobal()}
}
