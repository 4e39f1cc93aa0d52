package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	db     *sqlx.DB
	stuSvc student.ServiceInterface
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, version...) on the database")
	fmt.Fprintln(cli.out, "  hashpasscode -section SECTION - hash a section passcode for the configuration")
	fmt.Fprintln(cli.out, "  importstudents -file PATH - create students from an .xlsx workbook")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	hashPasscodeCmd := flag.NewFlagSet("hashpasscode", flag.ContinueOnError)
	hashPasscodeSection := hashPasscodeCmd.String("section", "", "One of students, grades, payments. The passcode will be prompted next.")
	hashPasscodeCmd.SetOutput(cli.out)

	importCmd := flag.NewFlagSet("importstudents", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "Path to the .xlsx workbook. The first row names the columns.")
	importCmd.SetOutput(cli.out)

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "hashpasscode":
		if err := hashPasscodeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *hashPasscodeSection == "" {
			hashPasscodeCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter passcode:")
		code, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(code) == 0 {
			hashPasscodeCmd.Usage()
			return errHelp
		}
		return cli.hashPasscode(*hashPasscodeSection, string(code))
	case "importstudents":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
