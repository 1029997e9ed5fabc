package validate

import (
	goerrs "errors"
	"testing"

	"github.com/sessamekesh/blockbridge/pkg/errors"
)

func TestDenylistRejectsEveryDefaultCommand(t *testing.T) {
	d := CreateDenylist(DefaultDeniedCommands)

	for _, cmd := range DefaultDeniedCommands {
		for _, raw := range []string{cmd, cmd + " Steve", "  " + cmd + "   now please"} {
			err := d.Check(raw)
			var rejected *errors.CommandRejected
			if !goerrs.As(err, &rejected) {
				t.Fatalf("Check(%q) = %v, want CommandRejected", raw, err)
			}
			if rejected.Token != cmd {
				t.Fatalf("Check(%q) token = %q, want %q", raw, rejected.Token, cmd)
			}
		}
	}
}

func TestDenylistNormalizesToken(t *testing.T) {
	d := CreateDenylist(DefaultDeniedCommands)

	for _, raw := range []string{"STOP", "/op alex", "//deop alex", "minecraft:ban alex", "/Minecraft:Kick alex"} {
		if err := d.Check(raw); err == nil {
			t.Fatalf("Check(%q) allowed a denied command", raw)
		}
	}
}

func TestDenylistAllowsEverythingElse(t *testing.T) {
	d := CreateDenylist(DefaultDeniedCommands)

	for _, raw := range []string{"", "   ", "time set day", "say stop", "weather clear", "opacity", "tp @s 0 0 0"} {
		if err := d.Check(raw); err != nil {
			t.Fatalf("Check(%q) = %v, want allowed", raw, err)
		}
	}
}

func TestDenylistCustomEntriesExtendDefaults(t *testing.T) {
	d := CreateDenylist([]string{" Gamerule ", "", "/difficulty"})
	if d.Len() != len(DefaultDeniedCommands)+2 {
		t.Fatalf("Len() = %d, want %d", d.Len(), len(DefaultDeniedCommands)+2)
	}
	if err := d.Check("gamerule doDaylightCycle false"); err == nil {
		t.Fatalf("custom entry gamerule not denied")
	}
	if err := d.Check("difficulty peaceful"); err == nil {
		t.Fatalf("custom entry difficulty not denied")
	}
	if err := d.Check("op alex"); err == nil {
		t.Fatalf("default entry op allowed alongside custom entries")
	}
}

func TestDenylistCannotBeEmptied(t *testing.T) {
	for _, extra := range [][]string{nil, {}, {""}} {
		d := CreateDenylist(extra)
		for _, cmd := range DefaultDeniedCommands {
			if err := d.Check(cmd); err == nil {
				t.Fatalf("CreateDenylist(%q) allowed %q", extra, cmd)
			}
		}
	}
}

func TestDenylistChecksEveryLine(t *testing.T) {
	d := CreateDenylist(nil)

	for _, raw := range []string{"say hi\nstop", "say hi\r\n  /op alex", "time set day\r\rban-ip 1.2.3.4"} {
		var rejected *errors.CommandRejected
		if err := d.Check(raw); !goerrs.As(err, &rejected) {
			t.Fatalf("Check(%q) = %v, want CommandRejected", raw, err)
		}
	}
	if err := d.Check("say hi\n\nweather clear\n"); err != nil {
		t.Fatalf("Check() rejected harmless multi-line input: %v", err)
	}
}
