package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fogwalk/internal/api"
	"github.com/mcoot/fogwalk/internal/api/apierr"
	"github.com/mcoot/fogwalk/internal/api/handler"
	"github.com/mcoot/fogwalk/internal/api/response"
	"github.com/mcoot/fogwalk/internal/factory"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/board"
	"github.com/mcoot/fogwalk/internal/services/bot"
	"github.com/mcoot/fogwalk/internal/services/game"
	"github.com/mcoot/fogwalk/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })
	app.GameController.SetStrategy(board.Uniform(model.EmptyEvent()))

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		WorldService:   app.WorldService,
		GameController: app.GameController,
		BotService:     app.BotService,
		Localizer:      app.Localizer,
		WorldClosers:   []handler.WorldCloser{app.HubManager, app.WSHub},
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	return ts.requestWithHeaders(method, path, body, token, nil)
}

func (ts *testServer) requestWithHeaders(method, path string, body any, token string, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// guest creates a guest player and returns its auth response
func (ts *testServer) guest(t *testing.T, username string) response.AuthResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"username": username}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// world creates a world owned by token's player and returns its ID
func (ts *testServer) world(t *testing.T, token, name string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/worlds", map[string]string{"name": name}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.World
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

// joined returns a token for a guest who has joined a fresh world
func (ts *testServer) joined(t *testing.T) (token, worldID string) {
	t.Helper()
	token = ts.guest(t, "Alice").SessionToken
	worldID = ts.world(t, token, "Meadow")

	rr := ts.request(http.MethodPost, "/api/v1/worlds/"+worldID+"/join", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return token, worldID
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.guest(t, "Alice")
	assert.Equal(t, "Alice", resp.Player.Username)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestPlayerWithoutBody(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Regexp(t, `^Player_[0-9a-f]{6}$`, resp.Player.Username)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"login":    "alice",
		"password": "secret123",
		"username": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registerResp))
	assert.False(t, registerResp.Player.IsGuest)
	assert.Equal(t, "Alice", registerResp.Player.Username)

	loginBody := map[string]string{"login": "alice", "password": "secret123"}
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)

	// Duplicate login
	rr = ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeLoginExists, decodeError(t, rr).Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"login": "nobody", "password": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, rr).Code)
}

func TestRegisterMissingLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{"password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResumeGuest(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/resume", map[string]string{"player_id": alice.Player.ID}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, alice.Player.ID, resp.Player.ID)
	assert.NotEqual(t, alice.SessionToken, resp.SessionToken)
}

func TestResumeStaleGuest(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	ts.app.MockClock.Advance(8 * 24 * time.Hour)

	rr := ts.request(http.MethodPost, "/api/v1/players/resume", map[string]string{"player_id": alice.Player.ID}, "")
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, apierr.CodeIdentityExpired, decodeError(t, rr).Code)
}

func TestGetMeAndLogout(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, alice.Player.ID, me.ID)

	rr = ts.request(http.MethodPost, "/api/v1/players/logout", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, alice.SessionToken)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/worlds", map[string]string{"name": "Meadow"}, "invalid-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTokenQueryParameter(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/me?token="+alice.SessionToken, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWorldLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")
	bob := ts.guest(t, "Bob")

	worldID := ts.world(t, alice.SessionToken, "Meadow")

	// Listing needs no session
	rr := ts.request(http.MethodGet, "/api/v1/worlds", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list response.WorldList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Worlds, 1)
	assert.Equal(t, "Meadow", list.Worlds[0].Name)

	// Join, then the summary counts the player
	rr = ts.request(http.MethodPost, "/api/v1/worlds/"+worldID+"/join", nil, bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/worlds/"+worldID, nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary response.World
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	require.NotNil(t, summary.PlayerCount)
	assert.Equal(t, 1, *summary.PlayerCount)
	assert.Equal(t, alice.Player.ID, summary.CreatedBy)

	// Only the creator may delete
	rr = ts.request(http.MethodDelete, "/api/v1/worlds/"+worldID, nil, bob.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/worlds/"+worldID, nil, alice.SessionToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/worlds/"+worldID, nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Bob's cached session went with the world
	rr = ts.request(http.MethodGet, "/api/v1/worlds/"+worldID+"/player", nil, bob.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateWorldRequiresName(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/worlds", map[string]string{"name": "  "}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJoinReturnsStateAndMap(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")
	worldID := ts.world(t, alice.SessionToken, "Meadow")

	rr := ts.request(http.MethodPost, "/api/v1/worlds/"+worldID+"/join", map[string]string{"locale": "ru"}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Player)
	require.NotNil(t, resp.Map)
	assert.Equal(t, model.Coordinate{X: 0, Y: 0}, resp.Player.Position)
	assert.Equal(t, model.TurnPhaseIdle, resp.Player.Phase)
	assert.Equal(t, board.DefaultWindowSize, resp.Map.Size)
	assert.Len(t, resp.Map.Cells, board.DefaultWindowSize)
}

func TestJoinUnknownWorld(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/worlds/nope/join", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeWorldNotFound, decodeError(t, rr).Code)
}

func TestCommandsBeforeJoin(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "Alice")
	worldID := ts.world(t, alice.SessionToken, "Meadow")

	rr := ts.request(http.MethodPost, "/api/v1/worlds/"+worldID+"/roll", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotJoined, decodeError(t, rr).Code)
}

func TestRollMoveEndTurn(t *testing.T) {
	ts := newTestServer(t)
	token, worldID := ts.joined(t)
	base := "/api/v1/worlds/" + worldID

	ts.app.MockRandom.QueueDice(1, 1)
	rr := ts.request(http.MethodPost, base+"/roll", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var roll game.RollResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &roll))
	assert.Equal(t, 2, roll.Total)
	assert.Equal(t, "You rolled 1 and 1: 2 steps.", roll.Message)

	// Ending early is refused while a step is possible
	rr = ts.request(http.MethodPost, base+"/end-turn", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeStepsRemaining, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, base+"/moves", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var moves response.LegalMoves
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &moves))
	assert.ElementsMatch(t, []string{"UP", "DOWN", "LEFT", "RIGHT"}, moves.Directions)
	assert.Equal(t, 2, moves.StepsLeft)

	rr = ts.request(http.MethodPost, base+"/move", map[string]string{"direction": "right"}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var move game.MoveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &move))
	assert.Equal(t, model.Coordinate{X: 1, Y: 0}, move.To)
	assert.Equal(t, 1, move.StepsLeft)
	assert.False(t, move.Triggered)

	// Stepping back onto the start is a revisit
	rr = ts.request(http.MethodPost, base+"/move", map[string]string{"direction": "LEFT"}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeAlreadyVisited, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, base+"/move", map[string]string{"direction": "UP"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, base+"/end-turn", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var state model.PlayerSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, model.TurnPhaseIdle, state.Phase)
	assert.Equal(t, 1, state.TurnNumber)
	assert.Equal(t, model.Coordinate{X: 1, Y: -1}, state.Position)
}

func TestInvalidDirectionIsLocalized(t *testing.T) {
	ts := newTestServer(t)
	token, worldID := ts.joined(t)
	base := "/api/v1/worlds/" + worldID

	ts.app.MockRandom.QueueDice(2, 2)
	rr := ts.request(http.MethodPost, base+"/roll", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, base+"/move", map[string]string{"direction": "sideways"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeInvalidDirection, apiErr.Code)
	assert.Equal(t, "Unknown direction.", apiErr.Message)
}

func TestRejectedMoveInRussian(t *testing.T) {
	ts := newTestServer(t)
	token, worldID := ts.joined(t)

	rr := ts.requestWithHeaders(http.MethodPost, "/api/v1/worlds/"+worldID+"/move",
		map[string]string{"direction": "UP"}, token, map[string]string{"Accept-Language": "ru-RU,ru;q=0.9"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeNoActiveRoll, apiErr.Code)
	assert.Equal(t, "Сначала бросьте кубики.", apiErr.Message)
}

func TestMapWindowSize(t *testing.T) {
	ts := newTestServer(t)
	token, worldID := ts.joined(t)
	base := "/api/v1/worlds/" + worldID

	rr := ts.request(http.MethodGet, base+"/map?size=5", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	var window model.MapWindow
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &window))
	assert.Equal(t, 5, window.Size)
	require.Len(t, window.Cells, 5)
	center := window.Cells[2][2]
	assert.Equal(t, model.Coordinate{X: 0, Y: 0}, center.Coord)
	assert.True(t, center.Visible)
	assert.True(t, center.Explored)

	rr = ts.request(http.MethodGet, base+"/map?size=4", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidWindow, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, base+"/map?size=abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, base+"/map?size=1001", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidWindow, decodeError(t, rr).Code)
}

func TestAutoplay(t *testing.T) {
	ts := newTestServer(t)
	token, worldID := ts.joined(t)
	base := "/api/v1/worlds/" + worldID

	ts.app.MockRandom.QueueDice(1, 2)
	rr := ts.request(http.MethodPost, base+"/autoplay", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var report bot.TurnReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, model.AutoplayStrategyExplorer, report.Strategy)
	require.Len(t, report.Actions, 5)
	assert.Equal(t, bot.ActionRoll, report.Actions[0].Type)
	assert.Equal(t, bot.ActionEndTurn, report.Actions[4].Type)
	assert.Equal(t, 1, report.Player.TurnNumber)

	rr = ts.request(http.MethodPost, base+"/autoplay", map[string]string{"strategy": "teleport"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeUnknownStrategy, decodeError(t, rr).Code)
}
