package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"siwes-logbook/internal/service"
)

var errHelp = errors.New("help provided")

// commandLine 运维命令行：迁移与导师-学生关联管理
type commandLine struct {
	out      io.Writer
	errOut   io.Writer
	users    service.UserService
	migrate  func() error
	rollback func() error
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|down                                        - apply all migrations / roll back one step")
	fmt.Fprintln(cli.out, "  assign -supervisor EMAIL -students M1,M2              - link students to a supervisor")
	fmt.Fprintln(cli.out, "  unassign -supervisor EMAIL -students M1,M2            - unlink students from a supervisor")
	fmt.Fprintln(cli.out, "  set-students -supervisor EMAIL [-students M1,M2]      - replace the supervisor's students; unselected students are unassigned")
	fmt.Fprintln(cli.out, "  set-supervisor -student MATRIC -supervisor EMAIL      - set a student's supervisor")
	fmt.Fprintln(cli.out, "  clear-supervisor -student MATRIC                      - remove a student's supervisor")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()
	rest := args[2:]

	switch args[1] {
	case "migrate":
		if len(rest) != 1 {
			cli.printUsage()
			return errHelp
		}
		switch rest[0] {
		case "up":
			return cli.migrate()
		case "down":
			return cli.rollback()
		default:
			return fmt.Errorf("%q: no such migrate command", rest[0])
		}

	case "assign", "unassign", "set-students":
		fs := cli.flagSet(args[1])
		supervisor := fs.String("supervisor", "", "The supervisor's email.")
		students := fs.String("students", "", "Comma-separated matric numbers.")
		if err := fs.Parse(rest); err != nil {
			return errHelp
		}
		if *supervisor == "" {
			fs.Usage()
			return errHelp
		}
		matrics := splitList(*students)
		switch args[1] {
		case "assign":
			if len(matrics) == 0 {
				fs.Usage()
				return errHelp
			}
			return cli.report(cli.users.AssignStudents(ctx, *supervisor, matrics), "assigned %d student(s) to %s", len(matrics), *supervisor)
		case "unassign":
			if len(matrics) == 0 {
				fs.Usage()
				return errHelp
			}
			return cli.report(cli.users.UnassignStudents(ctx, *supervisor, matrics), "unassigned %d student(s) from %s", len(matrics), *supervisor)
		default:
			return cli.report(cli.users.ReplaceStudents(ctx, *supervisor, matrics), "%s now supervises %d student(s)", *supervisor, len(matrics))
		}

	case "set-supervisor":
		fs := cli.flagSet(args[1])
		student := fs.String("student", "", "The student's matric number.")
		supervisor := fs.String("supervisor", "", "The supervisor's email.")
		if err := fs.Parse(rest); err != nil {
			return errHelp
		}
		if *student == "" || *supervisor == "" {
			fs.Usage()
			return errHelp
		}
		return cli.report(cli.users.SetSupervisor(ctx, *student, *supervisor), "%s is now supervised by %s", *student, *supervisor)

	case "clear-supervisor":
		fs := cli.flagSet(args[1])
		student := fs.String("student", "", "The student's matric number.")
		if err := fs.Parse(rest); err != nil {
			return errHelp
		}
		if *student == "" {
			fs.Usage()
			return errHelp
		}
		return cli.report(cli.users.ClearSupervisor(ctx, *student), "%s no longer has a supervisor", *student)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.errOut)
	return fs
}

// report 成功时输出一行结果
func (cli *commandLine) report(err error, format string, a ...interface{}) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, format+"\n", a...)
	return nil
}

// splitList 解析逗号分隔列表，忽略空项
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
