package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	"github.com/yungbote/spacekeeper-backend/internal/client/store"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// ServiceFactory builds the backend client for one command.
type ServiceFactory func(baseURL, token string, log *logger.Logger) (flows.Service, error)

func defaultServiceFactory(baseURL, token string, log *logger.Logger) (flows.Service, error) {
	c, err := api.New(api.Options{BaseURL: baseURL, Token: token, MaxRetries: 2, Log: log})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// session is one command's store with the sagas attached.
type session struct {
	store *store.Store[flows.RootState]
}

// open starts a session carrying the stored token.
func (c *cli) open(ctx context.Context) (*session, error) {
	return c.start(ctx, c.v.GetString(cfgKeyToken))
}

// openAnonymous ignores any stored token.
func (c *cli) openAnonymous(ctx context.Context) (*session, error) {
	return c.start(ctx, "")
}

func (c *cli) start(ctx context.Context, token string) (*session, error) {
	svc, err := c.newService(c.server, token, c.log)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	s := store.New(flows.RootState{}, flows.RootReducer, store.WithLogger(c.log), store.WithContext(ctx))
	flows.Run(s, svc)
	if token != "" {
		s.Dispatch(flows.Restore(token, c.v.GetString(cfgKeyRefreshToken)))
	}
	return &session{store: s}, nil
}

// do dispatches actions in order and waits for every saga they start.
func (s *session) do(ctx context.Context, actions ...store.Action) (flows.RootState, error) {
	for _, a := range actions {
		s.store.Dispatch(a)
	}
	if err := s.store.Settle(ctx); err != nil {
		return flows.RootState{}, err
	}
	return s.store.State(), nil
}

func (s *session) Close() { s.store.Close() }

// fillForm copies every flag the user set into the entity's form.
func fillForm(ctx context.Context, s *session, cmd *cobra.Command, e flows.Entity, names ...string) (map[string]string, error) {
	var actions []store.Action
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		actions = append(actions, flows.SetFormField(e, strings.ReplaceAll(name, "-", "_"), f.Value.String()))
	}
	st, err := s.do(ctx, actions...)
	if err != nil {
		return nil, err
	}
	switch e {
	case flows.EntitySpace:
		return st.Space.Form, nil
	case flows.EntityGrid:
		return st.Grid.Form, nil
	case flows.EntityItem:
		return st.Item.Form, nil
	}
	return nil, fmt.Errorf("no form for %s", e)
}

func editErr(es flows.EditStatus) error {
	if !es.Done {
		return errors.New("request did not finish")
	}
	if !es.IsSuccess {
		return errors.New(es.Message)
	}
	return nil
}

func listErr(msg string) error {
	if msg != "" {
		return errors.New(msg)
	}
	return nil
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func optIDFlag(cmd *cobra.Command, name string) (*uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("--%s: want uuid, got %q", name, raw)
	}
	return &id, nil
}
