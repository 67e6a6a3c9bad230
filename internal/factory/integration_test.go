package factory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/board"
	"github.com/mcoot/fogwalk/internal/services/bot"
	redisstorage "github.com/mcoot/fogwalk/internal/storage/redis"
	"github.com/mcoot/fogwalk/internal/updates"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	ctx    context.Context
	player *model.Player
	world  *model.World
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.setup(s.app)
}

func (s *IntegrationSuite) TearDownTest() {
	_ = s.app.Close()
}

// setup creates a guest and a world on app
func (s *IntegrationSuite) setup(app *TestApp) {
	session, err := app.AuthService.CreateGuestPlayer(s.ctx, "")
	s.Require().NoError(err)
	s.player = &session.Player

	s.world, err = app.WorldService.Create(s.ctx, "Meadow", s.player.ID)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) move(app *TestApp, dirs ...model.Direction) *model.PlayerSnapshot {
	var last *model.PlayerSnapshot
	for _, dir := range dirs {
		res, err := app.GameController.Move(s.ctx, s.world.ID, s.player.ID, dir)
		s.Require().NoError(err, "moving %s", dir)
		last = res.Player
	}
	return last
}

func (s *IntegrationSuite) drain(sub *updates.Subscription) []model.UpdateType {
	var out []model.UpdateType
	for {
		select {
		case u := <-sub.C():
			out = append(out, u.Type)
		default:
			return out
		}
	}
}

// Roll 3+4 at the origin, walk right three times, fail to step back, then go up
func (s *IntegrationSuite) TestNoRevisitWithinTurn() {
	s.app.GameController.SetStrategy(board.Uniform(model.EmptyEvent()))
	sub := s.app.Bus.Subscribe(updates.ForPlayer(s.world.ID, s.player.ID), 64)
	defer sub.Close()

	_, err := s.app.GameController.Join(s.ctx, s.world.ID, s.player, "en")
	s.Require().NoError(err)

	s.app.MockRandom.QueueDice(3, 4)
	roll, err := s.app.GameController.Roll(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)
	s.Equal(7, roll.Total)
	s.Equal("You rolled 3 and 4: 7 steps.", roll.Message)

	s.move(s.app, model.DirectionRight, model.DirectionRight, model.DirectionRight)
	s.drain(sub)

	_, err = s.app.GameController.Move(s.ctx, s.world.ID, s.player.ID, model.DirectionLeft)
	s.ErrorIs(err, model.ErrAlreadyVisited)
	s.Equal([]model.UpdateType{model.UpdateError}, s.drain(sub))

	player := s.move(s.app, model.DirectionUp)
	s.Equal(model.Coordinate{X: 3, Y: -1}, player.Position)
	s.Equal(4, player.StepsTaken)
	s.Equal(3, player.StepsLeft)
	s.Len(player.PathTaken, 5)
}

// A bonus cell reached on the last step adds two steps to the next roll
func (s *IntegrationSuite) TestBonusCarriesToNextTurn() {
	bonusAt := model.Coordinate{X: 0, Y: 7}
	s.app.GameController.SetStrategy(board.StrategyFunc(func(c model.Coordinate) model.CellEvent {
		if c == bonusAt {
			return model.BonusStepsEvent(2)
		}
		return model.EmptyEvent()
	}))

	_, err := s.app.GameController.Join(s.ctx, s.world.ID, s.player, "en")
	s.Require().NoError(err)

	s.app.MockRandom.QueueDice(6, 1)
	_, err = s.app.GameController.Roll(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)

	var last *model.PlayerSnapshot
	for i := 0; i < 7; i++ {
		res, err := s.app.GameController.Move(s.ctx, s.world.ID, s.player.ID, model.DirectionDown)
		s.Require().NoError(err)
		last = res.Player
		if i == 6 {
			s.True(res.Triggered)
			s.Equal("Event: Bonus! +2 steps next turn.", res.Message)
		}
	}
	s.Equal(bonusAt, last.Position)
	s.Equal(2, last.BonusSteps)

	_, err = s.app.GameController.EndTurn(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)

	s.app.MockRandom.QueueDice(1, 1)
	roll, err := s.app.GameController.Roll(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)
	s.Equal(4, roll.Total)
	s.Equal(2, roll.BonusApplied)
	s.Equal(0, roll.Player.BonusSteps)
}

func (s *IntegrationSuite) TestEnemySkipsNextTurn() {
	s.app.GameController.SetStrategy(board.StrategyFunc(func(c model.Coordinate) model.CellEvent {
		if c == (model.Coordinate{X: 1, Y: 0}) {
			return model.EnemyEvent(1)
		}
		return model.EmptyEvent()
	}))
	_, err := s.app.GameController.Join(s.ctx, s.world.ID, s.player, "en")
	s.Require().NoError(err)

	s.app.MockRandom.QueueDice(2, 2)
	_, err = s.app.GameController.Roll(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)
	s.move(s.app, model.DirectionRight)

	_, err = s.app.GameController.Move(s.ctx, s.world.ID, s.player.ID, model.DirectionRight)
	s.ErrorIs(err, model.ErrSkipPending)

	_, err = s.app.GameController.EndTurn(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)

	roll, err := s.app.GameController.Roll(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)
	s.True(roll.Skipped)
	s.Equal("You skip this turn.", roll.Message)
	s.Equal(0, roll.Player.TurnsToSkip)
}

func (s *IntegrationSuite) TestAutoplayPlaysWholeTurn() {
	_, err := s.app.GameController.Join(s.ctx, s.world.ID, s.player, "en")
	s.Require().NoError(err)

	s.app.MockRandom.QueueDice(2, 3)
	report, err := s.app.BotService.PlayTurn(s.ctx, s.world.ID, s.player.ID, "")
	s.Require().NoError(err)

	s.Equal(model.AutoplayStrategyExplorer, report.Strategy)
	// roll, five moves, end turn
	s.Require().Len(report.Actions, 7)
	s.Equal(bot.ActionRoll, report.Actions[0].Type)
	s.Equal(bot.ActionEndTurn, report.Actions[6].Type)
	s.Equal(report.Actions[5].Position, report.Player.Position)
	s.Equal(model.TurnPhaseIdle, report.Player.Phase)
	s.Equal(1, report.Player.TurnNumber)
}

func (s *IntegrationSuite) TestDeletingWorldDropsSessions() {
	_, err := s.app.GameController.Join(s.ctx, s.world.ID, s.player, "en")
	s.Require().NoError(err)

	s.Require().NoError(s.app.WorldService.Delete(s.ctx, s.world.ID, s.player.ID))

	_, err = s.app.GameController.State(s.ctx, s.world.ID, s.player.ID)
	s.ErrorIs(err, model.ErrNotJoined)
	_, err = s.app.GameController.Join(s.ctx, s.world.ID, s.player, "en")
	s.ErrorIs(err, model.ErrWorldNotFound)
}

func (s *IntegrationSuite) TestBootstrapCreatesDefaultWorldOnce() {
	app := NewTestApp()
	defer func() { _ = app.Close() }()

	s.Require().NoError(app.Bootstrap(s.ctx, "Meadow"))
	s.Require().NoError(app.Bootstrap(s.ctx, "Other"))

	worlds, err := app.WorldService.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(worlds, 1)
	s.Equal("Meadow", worlds[0].Name)
}

// A second server over the same Redis resumes the session where it was left
func (s *IntegrationSuite) TestRedisSessionSurvivesRestart() {
	mini := miniredis.RunT(s.T())
	newApp := func() *TestApp {
		client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
		return NewTestAppWithStorage(redisstorage.NewWithClient(client, redisstorage.DefaultConfig()))
	}

	first := newApp()
	s.setup(first)
	first.GameController.SetStrategy(board.Uniform(model.EmptyEvent()))

	_, err := first.GameController.Join(s.ctx, s.world.ID, s.player, "ru")
	s.Require().NoError(err)
	first.MockRandom.QueueDice(1, 2)
	_, err = first.GameController.Roll(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)
	before := s.move(first, model.DirectionDown, model.DirectionDown)
	s.Require().NoError(first.Close())

	second := newApp()
	defer func() { _ = second.Close() }()
	second.GameController.SetStrategy(board.Uniform(model.EnemyEvent(1)))

	after, err := second.GameController.State(s.ctx, s.world.ID, s.player.ID)
	s.Require().NoError(err)
	s.Equal(before.Position, after.Position)
	s.Equal(before.StepsLeft, after.StepsLeft)
	s.Equal(before.PathTaken, after.PathTaken)
	s.ElementsMatch(before.ExploredCells, after.ExploredCells)

	// Cells already generated keep their events
	res, err := second.GameController.Move(s.ctx, s.world.ID, s.player.ID, model.DirectionRight)
	s.Require().NoError(err)
	s.False(res.Triggered)
	s.Equal("Пустая клетка.", res.Message)
}
