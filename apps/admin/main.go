package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/document"
)

var logger core.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger = logsvc.NewStdLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))

	storage, err := document.Open(conf)
	errAndDie(err)

	loader := school.NewLoader(storage, school.NewFetcher(conf), logger)
	doc, err := loader.EnsureLoaded(context.Background())
	errAndDie(err)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:    conf,
		storage: storage,
		loader:  loader,
		store:   school.NewStore(doc, storage, validate, logger, nil, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}

func newTranslator() ut.Translator {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	return translator
}
