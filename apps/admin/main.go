package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grading"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
	logsvc "github.com/earmahsakyi/School-Management-System-sub002/services/logger"
	"github.com/earmahsakyi/School-Management-System-sub002/storage/database"
	sqlxrepos "github.com/earmahsakyi/School-Management-System-sub002/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	errAndDie(database.Ping(ctx, db, 5))
	cancel()

	// set up services
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	grading.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	rollbar := logsvc.NewRollbarLogger(logger, conf)
	rollbar.Enable(false)

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db,
		stuSvc: student.NewService(sqlxrepos.NewStudentRepository(db), validate, rollbar),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
