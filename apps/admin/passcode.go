package main

import (
	"fmt"
	"strings"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/access"
)

var errUnknownSection = fmt.Errorf("section must be one of %s", strings.Join(core.Sections, ", "))

// hashPasscode prints the environment variable that configures the passcode of section.
func (cli *commandLine) hashPasscode(section, code string) error {
	section = core.CleanString(section, true /* lower */)
	known := false
	for _, s := range core.Sections {
		if s == section {
			known = true
			break
		}
	}
	if !known {
		return errUnknownSection
	}

	hash, err := access.HashPasscode(code)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s_PASSCODES_%s=%s\n", strings.ToUpper(cli.conf.Env), strings.ToUpper(section), hash)
	return nil
}
