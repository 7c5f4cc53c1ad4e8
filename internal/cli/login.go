package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
)

var (
	loginEmail        string
	loginPasswordFile string
	loginRemember     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in with an email and password. The password is prompted for on the
terminal unless --password-file is given ("-" reads it from stdin).

Use --remember to keep the session in durable storage so later commands and
the portal pick it up.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email (prompted if empty)")
	loginCmd.Flags().StringVar(&loginPasswordFile, "password-file", "", "read the password from this file, or - for stdin")
	loginCmd.Flags().BoolVarP(&loginRemember, "remember", "r", false, "remember the session across restarts")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if s := a.manager.Session(); s.Authenticated {
		fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s (%s). Run firefly logout first.\n", s.User.Email, s.User.Role)
		return nil
	}

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		email, err = promptLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Email: ")
		if err != nil {
			return err
		}
	}
	password, err := readPassword(cmd, loginPasswordFile)
	if err != nil {
		return err
	}

	err = a.manager.Login(cmd.Context(), session.Credentials{Email: email, Password: password, RememberMe: loginRemember})
	if err != nil {
		s := a.manager.Session()
		if s.Error != "" {
			return errors.New(s.Error)
		}
		return err
	}

	s := a.manager.Session()
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", s.User.Name, s.User.Role)
	fmt.Fprintf(cmd.OutOrStdout(), "Home: %s\n", a.guard.Routes().HomeRoute(s.User.Role))
	if !s.RememberMe {
		fmt.Fprintln(cmd.OutOrStdout(), "Session not remembered; it ends when this command exits.")
	}
	return nil
}

func promptLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no input given")
	}
	return line, nil
}

// readPassword reads from --password-file, from stdin for "-", or from an
// echo-free terminal prompt.
func readPassword(cmd *cobra.Command, passwordFile string) (string, error) {
	switch passwordFile {
	case "":
	case "-":
		return promptLine(cmd.InOrStdin(), io.Discard, "")
	default:
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", fmt.Errorf("read password file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for the password prompt (use --password-file)")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
