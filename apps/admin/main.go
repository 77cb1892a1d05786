package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/imani/core"
	"github.com/trezcool/imani/core/devotional"
	"github.com/trezcool/imani/core/program"
	emailsvc "github.com/trezcool/imani/services/email"
	"github.com/trezcool/imani/storage/database"
	sqlxrepos "github.com/trezcool/imani/storage/database/sqlx"
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
	errAndDie(db.Ping())
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	mailSvc := emailsvc.NewConsoleService(conf)
	usrRepo := sqlxrepos.NewUserRepository(sdb)
	devSvc := devotional.NewService(sqlxrepos.NewDevotionalRepository(sdb))
	progSvc := program.NewService(sqlxrepos.NewProgressRepository(sdb), devSvc, mailSvc, conf)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		devSvc:  devSvc,
		progSvc: progSvc,
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
