package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Metronome  key.Binding
	Turbo      key.Binding
	Record     key.Binding
	Play       key.Binding
	Stop       key.Binding
	Copy       key.Binding
	Paste      key.Binding
	Export     key.Binding
	ExportMIDI key.Binding
	Import     key.Binding
	Clear      key.Binding
	BPMUp      key.Binding
	BPMDown    key.Binding
	DivUp      key.Binding
	DivDown    key.Binding
	GainUp     key.Binding
	GainDown   key.Binding
	VolUp      key.Binding
	VolDown    key.Binding
	Theme      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

func defaultKeyMap() keyMap {
	return keyMap{
		Metronome:  binding("metronome", "1"),
		Turbo:      binding("turbo", "2"),
		Record:     binding("record", "3", "ctrl+r"),
		Play:       binding("play", "4", "enter"),
		Stop:       binding("stop", "esc"),
		Copy:       binding("copy", "c"),
		Paste:      binding("paste", "p"),
		Export:     binding("export", "o"),
		ExportMIDI: binding("export midi", "ctrl+o"),
		Import:     binding("import", "i"),
		Clear:      binding("clear", "backspace"),
		BPMUp:      binding("bpm+", "+", "="),
		BPMDown:    binding("bpm-", "-", "_"),
		DivUp:      binding("div+", "]"),
		DivDown:    binding("div-", "["),
		GainUp:     binding("gain+", ">"),
		GainDown:   binding("gain-", "<"),
		VolUp:      binding("vol+", "."),
		VolDown:    binding("vol-", ","),
		Theme:      binding("theme", "t"),
		Help:       binding("more", "?"),
		Quit:       binding("quit", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Metronome, k.Turbo, k.Record, k.Play, k.Stop, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Metronome, k.Turbo, k.BPMUp, k.BPMDown, k.DivUp, k.DivDown},
		{k.Record, k.Play, k.Stop, k.Clear},
		{k.Copy, k.Paste, k.Export, k.ExportMIDI, k.Import},
		{k.GainUp, k.GainDown, k.VolUp, k.VolDown, k.Theme, k.Quit},
	}
}
