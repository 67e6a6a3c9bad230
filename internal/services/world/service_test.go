package world

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fogwalk/internal/dependencies/mocks"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/storage/memory"
	"github.com/mcoot/fogwalk/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreate() {
	world, err := s.service.Create(s.ctx, "  Meadow  ", "p1")
	s.Require().NoError(err)

	s.NotEmpty(world.ID)
	s.Equal("Meadow", world.Name)
	s.Equal(model.PlayerID("p1"), world.CreatedBy)
	s.Equal(s.clock.Now(), world.CreatedAt)

	stored, err := s.storage.GetWorld(s.ctx, world.ID)
	s.Require().NoError(err)
	s.Equal("Meadow", stored.Name)
}

func (s *ServiceSuite) TestCreateRequiresName() {
	_, err := s.service.Create(s.ctx, "   ", "p1")
	s.ErrorIs(err, model.ErrWorldNameRequired)
}

func (s *ServiceSuite) TestCreateTruncatesLongName() {
	world, err := s.service.Create(s.ctx, strings.Repeat("ж", 100), "p1")
	s.Require().NoError(err)
	s.Equal(MaxNameLength, len([]rune(world.Name)))
}

func (s *ServiceSuite) TestCreateUniqueIDs() {
	a, _ := s.service.Create(s.ctx, "One", "p1")
	b, _ := s.service.Create(s.ctx, "Two", "p1")
	s.NotEqual(a.ID, b.ID)
}

func (s *ServiceSuite) TestListOldestFirst() {
	_, _ = s.service.Create(s.ctx, "First", "p1")
	s.clock.Advance(time.Minute)
	_, _ = s.service.Create(s.ctx, "Second", "p1")

	worlds, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(worlds, 2)
	s.Equal("First", worlds[0].Name)
	s.Equal("Second", worlds[1].Name)
}

func (s *ServiceSuite) TestGetCountsPlayers() {
	world, _ := s.service.Create(s.ctx, "Meadow", "p1")
	_ = s.storage.SaveSession(s.ctx, &model.GameSession{WorldID: world.ID, PlayerID: "p1"})
	_ = s.storage.SaveSession(s.ctx, &model.GameSession{WorldID: world.ID, PlayerID: "p2"})

	summary, err := s.service.Get(s.ctx, world.ID)
	s.Require().NoError(err)
	s.Equal("Meadow", summary.Name)
	s.Equal(2, summary.PlayerCount)
}

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrWorldNotFound)
}

func (s *ServiceSuite) TestDelete() {
	world, _ := s.service.Create(s.ctx, "Meadow", "p1")
	_ = s.storage.SaveSession(s.ctx, &model.GameSession{WorldID: world.ID, PlayerID: "p1"})

	s.ErrorIs(s.service.Delete(s.ctx, world.ID, "p2"), model.ErrNotWorldOwner)

	s.Require().NoError(s.service.Delete(s.ctx, world.ID, "p1"))
	_, err := s.storage.GetWorld(s.ctx, world.ID)
	s.ErrorIs(err, model.ErrWorldNotFound)
	_, err = s.storage.GetSession(s.ctx, world.ID, "p1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ServiceSuite) TestDeleteRunsHooksBeforeRemovingSessions() {
	world, _ := s.service.Create(s.ctx, "Meadow", "p1")
	_ = s.storage.SaveSession(s.ctx, &model.GameSession{WorldID: world.ID, PlayerID: "p1"})

	var hooked []model.WorldID
	sessionsAtHook := -1
	s.service.OnDelete(func(id model.WorldID) {
		hooked = append(hooked, id)
		sessions, _ := s.storage.GetSessionsForWorld(s.ctx, id)
		sessionsAtHook = len(sessions)
	})

	s.ErrorIs(s.service.Delete(s.ctx, world.ID, "p2"), model.ErrNotWorldOwner)
	s.Empty(hooked, "a refused delete runs no hooks")

	s.Require().NoError(s.service.Delete(s.ctx, world.ID, "p1"))
	s.Equal([]model.WorldID{world.ID}, hooked)
	s.Equal(1, sessionsAtHook)
}

func (s *ServiceSuite) TestEnsureDefault() {
	first, err := s.service.EnsureDefault(s.ctx, "Commons")
	s.Require().NoError(err)
	s.Equal("Commons", first.Name)

	again, err := s.service.EnsureDefault(s.ctx, "Other")
	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)
}
