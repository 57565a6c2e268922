package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/course"
	"github.com/trezcool/learnhub/core/user"
	emailsvc "github.com/trezcool/learnhub/services/email"
	logsvc "github.com/trezcool/learnhub/services/logger"
	rediscache "github.com/trezcool/learnhub/storage/cache/redis"
	"github.com/trezcool/learnhub/storage/database"
	sqlxrepos "github.com/trezcool/learnhub/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	ctx := context.Background()
	errAndDie(database.CreateIfNotExist(ctx, conf))
	db, err := database.Open(ctx, conf)
	errAndDie(err)
	defer db.Close()

	// the admin tool never mails: enrollments are not created from here
	mailSvc := emailsvc.NewConsoleService(conf, logsvc.NewNopLogger())

	// start CLI
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	cli := commandLine{
		db:        db.DB,
		validate:  validator.New(),
		usrSvc:    usrSvc,
		courseSvc: course.NewService(sqlxrepos.NewCourseRepository(db), mailSvc),
	}
	if conf.Redis.Addr != "" {
		client := rediscache.NewClient(conf.Redis)
		defer client.Close()
		cli.profiles = rediscache.NewProfileStore(client, usrSvc, conf.Redis.ProfileCacheTTL, logsvc.NewNopLogger())
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
