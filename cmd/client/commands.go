package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/local"
	"github.com/harrylevesque/schoolportal/internal/models"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Show the site content",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		view := app.Initialize(c)
		b := view.Bundle
		printSource(view.Source)
		color.New(color.Bold).Println(b.Texts.Site.Title)
		field("Escola", b.SchoolInfo.Name)
		field("Slogan", b.SchoolInfo.Slogan)
		field("Email", b.SchoolInfo.Email)
		field("Telefone", b.SchoolInfo.Phone)
		field("Endereço", b.SchoolInfo.Address)
		field("Logo", view.LogoURL)
		fmt.Println()
		color.New(color.Bold).Println(b.Texts.Sections.About.Title)
		fmt.Println(b.Texts.Sections.About.Content)
		fmt.Println()
		for _, course := range b.Courses.Courses {
			fmt.Printf("%s %s (%s)\n", course.Emoji, course.Name, course.Duration)
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <usuario> <senha>",
	Short: "Log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		out, err := app.Login(c, args[0], args[1])
		if err != nil {
			return err
		}
		printFeedback(out.Feedback)
		if !out.OK() {
			return fmt.Errorf("login failed: %s", out.Outcome)
		}
		return nil
	},
}

func printFeedback(f auth.Feedback) {
	switch f.Class {
	case "alert-success":
		color.Green("%s", f.Message)
	case "alert-warning":
		color.Yellow("%s", f.Message)
	default:
		color.Red("%s", f.Message)
	}
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, ok := app.CurrentUser()
		if !ok {
			fmt.Println("Não autenticado.")
			return nil
		}
		fmt.Printf("%s (%s) - %s\n", sess.User.Name, sess.User.Username, sess.Role)
		return nil
	},
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Course catalog",
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		list, src := app.Courses(c)
		printSource(src)
		for _, course := range list {
			fmt.Printf("%-24s %s %s\n", course.ID, course.Emoji, course.Name)
			field("Descrição", course.Description)
			field("Duração", course.Duration)
			field("Nível", course.Level)
		}
		return nil
	},
}

var coursePatch struct {
	name, description, duration, level, category, emoji string
}

func patchFromFlags(cmd *cobra.Command) models.CoursePatch {
	var p models.CoursePatch
	pick := func(flag string, v string) *string {
		if cmd.Flags().Changed(flag) {
			return &v
		}
		return nil
	}
	p.Name = pick("name", coursePatch.name)
	p.Description = pick("description", coursePatch.description)
	p.Duration = pick("duration", coursePatch.duration)
	p.Level = pick("level", coursePatch.level)
	p.Category = pick("category", coursePatch.category)
	p.Emoji = pick("emoji", coursePatch.emoji)
	return p
}

func addCourseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&coursePatch.name, "name", "", "course name")
	cmd.Flags().StringVar(&coursePatch.description, "description", "", "description")
	cmd.Flags().StringVar(&coursePatch.duration, "duration", "", "duration, e.g. 40h")
	cmd.Flags().StringVar(&coursePatch.level, "level", "", "level")
	cmd.Flags().StringVar(&coursePatch.category, "category", "", "category")
	cmd.Flags().StringVar(&coursePatch.emoji, "emoji", "", "emoji")
}

var coursesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a course",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		course, err := app.CreateCourse(c, patchFromFlags(cmd))
		if err != nil {
			return err
		}
		color.Green("Curso adicionado: %s (%s)", course.Name, course.ID)
		return nil
	},
}

var coursesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		course, err := app.UpdateCourse(c, args[0], patchFromFlags(cmd))
		if err != nil {
			return err
		}
		color.Green("Curso atualizado: %s (%s)", course.Name, course.ID)
		return nil
	},
}

var coursesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		if err := app.DeleteCourse(c, args[0]); err != nil {
			return err
		}
		color.Green("Curso removido.")
		return nil
	},
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <course-id>",
	Short: "Enroll in a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		if _, err := app.Enroll(c, args[0]); err != nil {
			return err
		}
		color.Green("Inscrição realizada (demo local).")
		return nil
	},
}

var myCoursesCmd = &cobra.Command{
	Use:   "my-courses",
	Short: "List your enrollments",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		list, err := app.MyCourses(c)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("Nenhum curso inscrito.")
		}
		for _, en := range list {
			fmt.Printf("%-12s %-20s %3d%%  %s\n", en.ID, en.Title, en.Progress, en.Description)
		}
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User administration",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		list, src, err := app.ListUsers(c)
		if err != nil {
			return err
		}
		printSource(src)
		for _, u := range list {
			fmt.Printf("%-16s %-24s %-30s %s\n", u.Username, u.Name, u.Email, u.Role)
		}
		return nil
	},
}

var newUser struct {
	name, username, email, secret, role string
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		u, err := app.AddUser(c, local.NewUser{
			Name:     newUser.name,
			Username: newUser.username,
			Email:    newUser.email,
			Secret:   newUser.secret,
			Role:     models.Role(newUser.role),
		})
		if err != nil {
			return err
		}
		color.Green("Usuário adicionado com sucesso: %s", u.Username)
		return nil
	},
}

var usersRmCmd = &cobra.Command{
	Use:   "rm <usuario>",
	Short: "Remove a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		if err := app.RemoveUser(c, args[0]); err != nil {
			return err
		}
		color.Green("Usuário removido com sucesso")
		return nil
	},
}

var usersPasswdCmd = &cobra.Command{
	Use:   "passwd <usuario> <nova-senha>",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		if err := app.ChangePassword(c, args[0], args[1]); err != nil {
			return err
		}
		color.Green("Senha alterada com sucesso")
		return nil
	},
}

var contactMsg struct {
	name, email, message string
}

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a message through the contact form",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cancel := ctx()
		defer cancel()

		if err := app.SendContact(c, contactMsg.name, contactMsg.email, contactMsg.message); err != nil {
			return err
		}
		color.Green("Mensagem enviada com sucesso")
		return nil
	},
}

func init() {
	addCourseFlags(coursesAddCmd)
	addCourseFlags(coursesEditCmd)
	coursesCmd.AddCommand(coursesListCmd, coursesAddCmd, coursesEditCmd, coursesRmCmd)

	usersAddCmd.Flags().StringVar(&newUser.name, "name", "", "full name")
	usersAddCmd.Flags().StringVar(&newUser.username, "username", "", "login name")
	usersAddCmd.Flags().StringVar(&newUser.email, "email", "", "email address")
	usersAddCmd.Flags().StringVar(&newUser.secret, "password", "", "password")
	usersAddCmd.Flags().StringVar(&newUser.role, "role", string(models.RoleStandard), "admin or usuario")
	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersRmCmd, usersPasswdCmd)

	contactCmd.Flags().StringVar(&contactMsg.name, "name", "", "your name")
	contactCmd.Flags().StringVar(&contactMsg.email, "email", "", "your email")
	contactCmd.Flags().StringVar(&contactMsg.message, "message", "", "message")

	rootCmd.AddCommand(siteCmd, loginCmd, logoutCmd, whoamiCmd, coursesCmd, enrollCmd, myCoursesCmd, usersCmd, contactCmd)
}
