package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/services"
	"golang.org/x/term"
)

// tokenEnv is read when -token is not given
const tokenEnv = "LMS_TOKEN"

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type loginService interface {
	Login(ctx context.Context, email, password string) (auth.AuthContext, error)
}

type courseCreator interface {
	CreateCourse(ctx context.Context, authCtx auth.AuthContext, draft composer.CourseDraft) (models.CreatedCourse, error)
}

type courseViewer interface {
	CourseView(ctx context.Context, authCtx auth.AuthContext, courseID int64) (services.CourseView, error)
}

type commandLine struct {
	auth       loginService
	instructor courseCreator
	student    courseViewer
	parser     *auth.TokenParser
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL - log in and print the access token; the password is prompted next")
	fmt.Fprintln(cli.out, "  publish -manifest FILE [-token TOKEN] - create a course from a YAML manifest")
	fmt.Fprintln(cli.out, "  progress -course ID [-token TOKEN] - show lesson states of an enrolled course")
	fmt.Fprintf(cli.out, "The token defaults to $%s.\n", tokenEnv)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginEmail := loginCmd.String("email", "", "The account email. The password will be prompted next.")

	publishCmd := flag.NewFlagSet("publish", flag.ContinueOnError)
	publishManifest := publishCmd.String("manifest", "", "Path to the course manifest (YAML).")
	publishToken := publishCmd.String("token", "", "Instructor access token.")
	publishRole := publishCmd.String("role", string(auth.RoleInstructor), "Role to assume when the token carries none.")

	progressCmd := flag.NewFlagSet("progress", flag.ContinueOnError)
	progressCourse := progressCmd.Int64("course", 0, "Course ID.")
	progressToken := progressCmd.String("token", "", "Student access token.")

	for _, fs := range []*flag.FlagSet{loginCmd, publishCmd, progressCmd} {
		fs.SetOutput(cli.out)
	}

	ctx := context.Background()
	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, string(pwd))
	case "publish":
		if err := publishCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *publishManifest == "" {
			publishCmd.Usage()
			return errHelp
		}
		authCtx, err := cli.authContext(*publishToken, *publishRole)
		if err != nil {
			return err
		}
		return cli.publish(ctx, authCtx, *publishManifest)
	case "progress":
		if err := progressCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *progressCourse <= 0 {
			progressCmd.Usage()
			return errHelp
		}
		authCtx, err := cli.authContext(*progressToken, string(auth.RoleStudent))
		if err != nil {
			return err
		}
		return cli.progress(ctx, authCtx, *progressCourse)
	default:
		cli.printUsage()
		return errHelp
	}
}

// authContext reads the token from the flag or the environment
func (cli *commandLine) authContext(token, fallbackRole string) (auth.AuthContext, error) {
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token == "" {
		return auth.Anonymous, fmt.Errorf("no token: pass -token or set %s", tokenEnv)
	}
	role, err := auth.ParseRole(fallbackRole)
	if err != nil {
		return auth.Anonymous, err
	}
	return cli.parser.Parse(token, role)
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	authCtx, err := cli.auth.Login(ctx, email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s\n", authCtx.Role)
	fmt.Fprintln(cli.out, authCtx.Token)
	return nil
}

func (cli *commandLine) progress(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	view, err := cli.student.CourseView(ctx, authCtx, courseID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, view.Course.Title)
	for i, card := range view.Cards {
		fmt.Fprintf(cli.out, "%3d. %-40s %s\n", i+1, card.Lesson.Title, card.State)
	}
	if view.Progress.Visible() {
		fmt.Fprintln(cli.out, view.Progress.Label())
	}
	return nil
}

func (cli *commandLine) uploadStarted(task composer.UploadTask, total int) {
	fmt.Fprintf(cli.out, "Uploading %s (lesson %d, %d file(s) in total)...\n", task.File.Name, task.LessonNumber(), total)
}
