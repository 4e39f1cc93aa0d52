package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func (cli *commandLine) importStudents(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	res, err := cli.stuSvc.Import(context.Background(), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%d student(s) created, %d row(s) skipped\n", len(res.Created), len(res.Skipped))
	for _, s := range res.Skipped {
		fmt.Fprintf(cli.out, "  row %d: %s\n", s.Row, s.Error)
	}
	return nil
}
