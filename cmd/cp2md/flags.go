package main

import (
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/whee/cp2md/internal/config"
)

// toggle holds the last --show-X/--hide-X value seen for one setting.
type toggle struct {
	set   bool
	value bool
}

// toggleValue is a boolean pflag.Value that writes into a shared toggle, so
// whichever of a show/hide pair comes last on the command line wins.
type toggleValue struct {
	t  *toggle
	on bool
}

func (v toggleValue) String() string {
	return strconv.FormatBool(v.t.set && v.t.value == v.on)
}

func (v toggleValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	v.t.set = true
	v.t.value = b == v.on
	return nil
}

func (v toggleValue) Type() string {
	return "bool"
}

type displayFlags struct {
	toggles map[string]*toggle
}

type displaySetting struct {
	name string
	key  string
	what string
	on   bool
}

var displaySettings = []displaySetting{
	{name: "timestamps", key: config.KeyShowTimestamps, what: "timestamps", on: false},
	{name: "model", key: config.KeyShowModel, what: "model ID", on: true},
	{name: "agent", key: config.KeyShowAgent, what: "agent name", on: true},
	{name: "context", key: config.KeyShowContext, what: "attached context", on: true},
	{name: "tools", key: config.KeyShowTools, what: "tool invocations", on: false},
}

func newDisplayFlags() *displayFlags {
	d := &displayFlags{toggles: make(map[string]*toggle, len(displaySettings))}
	for _, s := range displaySettings {
		d.toggles[s.key] = &toggle{}
	}
	return d
}

func (d *displayFlags) register(fs *pflag.FlagSet) {
	for _, s := range displaySettings {
		state := "off"
		if s.on {
			state = "on"
		}
		t := d.toggles[s.key]
		addToggle(fs, "show-"+s.name, "", t, true, "include "+s.what+" (default: "+state+")")
		addToggle(fs, "hide-"+s.name, "", t, false, "hide "+s.what)
	}
	addToggle(fs, "verbose", "v", d.toggles[config.KeyShowTools], true, "alias for --show-tools")

	addToggle(fs, "no-model", "", d.toggles[config.KeyShowModel], false, "alias for --hide-model")
	_ = fs.MarkHidden("no-model")
}

// apply overrides v with every toggle given on the command line.
func (d *displayFlags) apply(v *viper.Viper) {
	for key, t := range d.toggles {
		if t.set {
			v.Set(key, t.value)
		}
	}
}

func addToggle(fs *pflag.FlagSet, name, shorthand string, t *toggle, on bool, usage string) {
	flag := fs.VarPF(toggleValue{t: t, on: on}, name, shorthand, usage)
	flag.NoOptDefVal = "true"
}
