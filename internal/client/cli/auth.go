package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	"github.com/yungbote/spacekeeper-backend/internal/client/view"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

func (c *cli) persist(token, refreshToken string) error {
	if err := saveSession(c.configDir, token, refreshToken); err != nil {
		return err
	}
	c.v.Set(cfgKeyToken, token)
	c.v.Set(cfgKeyRefreshToken, refreshToken)
	return nil
}

// endSession forgets the stored tokens after the backend rejected them.
func (c *cli) endSession(cause error) error {
	if err := c.persist("", ""); err != nil {
		return errors.Join(cause, fmt.Errorf("clear stored session: %w", err))
	}
	return cause
}

type sessionView struct {
	LoggedIn bool        `json:"logged_in"`
	Message  string      `json:"message,omitempty"`
	User     *types.User `json:"user,omitempty"`
}

func authView(st flows.AuthState) sessionView {
	return sessionView{LoggedIn: st.LoggedIn, Message: st.Message, User: st.User}
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openAnonymous(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.Login(email, password))
			if err != nil {
				return err
			}
			if !st.Auth.LoggedIn {
				return fmt.Errorf("login: %s", st.Auth.Message)
			}
			if err := c.persist(st.Auth.Token, st.Auth.RefreshToken); err != nil {
				return err
			}
			return c.render(cmd, authView(st.Auth), func(vs view.Styles) string {
				return vs.Success.Render("Logged in.") + "\n" + view.User(vs, st.Auth.User)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.Logout())
			if err != nil {
				return err
			}
			if err := c.persist("", ""); err != nil {
				return err
			}
			return c.render(cmd, authView(st.Auth), func(vs view.Styles) string {
				return vs.Muted.Render(st.Auth.Message)
			})
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openAnonymous(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.Register(req))
			if err != nil {
				return err
			}
			es := st.Auth.EditStatus
			if err := editErr(es); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			user, _ := es.Payload.(*types.User)
			return c.render(cmd, user, func(vs view.Styles) string {
				return view.Status(vs, false, "", es) + "\n" + view.User(vs, user) + "\n" +
					vs.Muted.Render("Run `spacectl login` to start a session.")
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "account email")
	f.StringVar(&req.Password, "password", "", "account password")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	for _, name := range []string{"email", "password", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (c *cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.RefreshSession())
			if err != nil {
				return err
			}
			if !st.Auth.LoggedIn {
				return c.endSession(fmt.Errorf("refresh: %s", st.Auth.Message))
			}
			if st.Auth.Message != "" {
				return fmt.Errorf("refresh: %s", st.Auth.Message)
			}
			if err := c.persist(st.Auth.Token, st.Auth.RefreshToken); err != nil {
				return err
			}
			return c.render(cmd, authView(st.Auth), func(vs view.Styles) string {
				return vs.Success.Render("Session refreshed.")
			})
		},
	}
}

func (c *cli) meCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.FetchMe())
			if err != nil {
				return err
			}
			if st.Auth.User == nil {
				if !st.Auth.LoggedIn {
					return c.endSession(notLoggedIn(st.Auth.Message))
				}
				return notLoggedIn(st.Auth.Message)
			}
			return c.render(cmd, st.Auth.User, func(vs view.Styles) string {
				return view.User(vs, st.Auth.User)
			})
		},
	}

	var first, last string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields api.ProfileFields
			if cmd.Flags().Changed("first-name") {
				fields.FirstName = &first
			}
			if cmd.Flags().Changed("last-name") {
				fields.LastName = &last
			}
			if fields.FirstName == nil && fields.LastName == nil {
				return errors.New("nothing to update: pass --first-name or --last-name")
			}

			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.UpdateMe(fields))
			if err != nil {
				return err
			}
			if err := editErr(st.Auth.EditStatus); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			return c.render(cmd, st.Auth.User, func(vs view.Styles) string {
				return view.Status(vs, false, "", st.Auth.EditStatus) + "\n" + view.User(vs, st.Auth.User)
			})
		},
	}
	update.Flags().StringVar(&first, "first-name", "", "first name")
	update.Flags().StringVar(&last, "last-name", "", "last name")
	cmd.AddCommand(update)
	return cmd
}

func notLoggedIn(msg string) error {
	if msg == "" {
		return errors.New("not logged in: run `spacectl login`")
	}
	return fmt.Errorf("not logged in: %s", msg)
}
