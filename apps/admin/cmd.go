package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/backup"
	"github.com/abdel28fr/ecole-pwa/core/user"
	"github.com/abdel28fr/ecole-pwa/storage/kvrepos"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf      *core.Config
	db        *kvrepos.DB
	sqlDB     *sql.DB // postgres engine only
	usrRepo   user.Repository
	usrSvc    *user.Service
	backupSvc *backup.Service
	out       io.Writer
}

func newCommandLine(conf *core.Config, db *kvrepos.DB, sqlDB *sql.DB, out io.Writer) *commandLine {
	usrRepo := kvrepos.NewUserRepository(db)
	return &commandLine{
		conf:      conf,
		db:        db,
		sqlDB:     sqlDB,
		usrRepo:   usrRepo,
		usrSvc:    user.NewService(usrRepo),
		backupSvc: backup.NewService(kvrepos.NewBackupRepository(db)),
		out:       out,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME -email EMAIL [-name NAME] [-admin|-role ROLE] - create or update a user")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (postgres storage)")
	fmt.Fprintln(cli.out, "  seed - write the default classes, subjects, settings and finance categories if missing")
	fmt.Fprintln(cli.out, "  reset -yes - delete all academy data (not the users) and seed the defaults")
	fmt.Fprintln(cli.out, "  backup [-out FILE] - export the academy data to a JSON file")
	fmt.Fprintln(cli.out, "  validate -in FILE - check a backup file")
	fmt.Fprintln(cli.out, "  restore -in FILE - restore a backup file")
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's name (defaults to the username).")
	addUserAdmin := addUserCmd.Bool("admin", false, "Make the user an admin owner.")
	addUserRole := addUserCmd.String("role", "", "The user's role (admin:, admin:owner, staff:accountant, staff:teacher).")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	resetCmd := flag.NewFlagSet("reset", flag.ExitOnError)
	resetConfirm := resetCmd.Bool("yes", false, "Confirm the deletion of all academy data.")

	backupCmd := flag.NewFlagSet("backup", flag.ExitOnError)
	backupOut := backupCmd.String("out", "", "The backup file (defaults to academy-backup-YYYY-MM-DD.json).")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateIn := validateCmd.String("in", "", "The backup file to check.")

	restoreCmd := flag.NewFlagSet("restore", flag.ExitOnError)
	restoreIn := restoreCmd.String("in", "", "The backup file to restore.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		role := *addUserRole
		if *addUserAdmin {
			role = user.RoleAdminOwner
		}
		pwd, err := cli.promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		return cli.addUser(*addUserName, *addUserUname, *addUserEmail, pwd, role)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "seed":
		return cli.seed()

	case "reset":
		if err := resetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if !*resetConfirm {
			resetCmd.Usage()
			return errHelp
		}
		return cli.reset()

	case "backup":
		if err := backupCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.backup(*backupOut)

	case "validate":
		if err := validateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *validateIn == "" {
			validateCmd.Usage()
			return errHelp
		}
		return cli.validate(*validateIn)

	case "restore":
		if err := restoreCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *restoreIn == "" {
			restoreCmd.Usage()
			return errHelp
		}
		return cli.restore(*restoreIn)

	default:
		cli.printUsage()
		return errHelp
	}
}
