package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	exportsvc "github.com/trezcool/shule/services/export"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf    *core.Config
	storage school.Storage
	loader  *school.Loader
	store   *school.Store
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  seed                            - load the seed if no document is stored yet")
	fmt.Println("  addteacher -name NAME           - register a teacher (and their login)")
	fmt.Println("  report -out FILE                - export the XLSX report")
	fmt.Println("  resetpassword -login LOGIN      - reset a user's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ExitOnError)
	addTeacherName := addTeacherCmd.String("name", "", "The teacher's full name.")

	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	reportOut := reportCmd.String("out", "relatorio.xlsx", "Path of the XLSX file to write.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordLogin := resetPasswordCmd.String("login", "", "The user's login. The password will be prompted next.")

	ctx := context.Background()

	switch args[1] {
	case "seed":
		return cli.seed(ctx)
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeacherName == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		return cli.addTeacher(ctx, *addTeacherName)
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.report(*reportOut)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordLogin == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordLogin, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

// seed is a no-op when a document is already stored; EnsureLoaded in main
// has done the work by the time we get here.
func (cli *commandLine) seed(ctx context.Context) error {
	if _, err := cli.loader.EnsureLoaded(ctx); err != nil {
		return err
	}
	fmt.Println("document ready")
	return nil
}

func (cli *commandLine) addTeacher(ctx context.Context, name string) error {
	teacher, err := cli.store.AddTeacher(ctx, school.NewTeacher{Name: name})
	if err != nil {
		return err
	}
	fmt.Printf("teacher %q registered with id %s\n", teacher.Name, teacher.ID)
	return nil
}

func (cli *commandLine) report(out string) error {
	buf, err := exportsvc.NewReporter(cli.store).BuildReport()
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Printf("report written to %s\n", out)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, login, pwd string) error {
	if err := cli.store.ResetPassword(ctx, login, pwd); err != nil {
		return err
	}
	fmt.Printf("password reset for %q\n", login)
	return nil
}
