package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/fogwalk/internal/factory"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/testutil"
	"github.com/mcoot/fogwalk/internal/web"
)

// webTestServer wires the stream router over a test app
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	token   string
	player  model.Player
	world   *model.World
}

func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := web.NewRouter(web.RouterConfig{
		Logger:       testutil.NopLogger(),
		AuthService:  app.AuthService,
		WorldService: app.WorldService,
		Localizer:    app.Localizer,
		HubManager:   app.HubManager,
		WSHub:        app.WSHub,
	})

	session, err := app.AuthService.CreateGuestPlayer(context.Background(), "Alice")
	require.NoError(t, err)
	world, err := app.WorldService.Create(context.Background(), "Meadow", session.Player.ID)
	require.NoError(t, err)

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		token:   session.Token,
		player:  session.Player,
		world:   world,
	}
}

// stream issues a GET that is cancelled after a short while, returning what was written
func (ts *webTestServer) stream(path string, prepare func(*http.Request)) *httptest.ResponseRecorder {
	ts.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
	if prepare != nil {
		prepare(req)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}
