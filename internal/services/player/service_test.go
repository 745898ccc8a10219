package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/playersvc/internal/codec"
	"github.com/mcoot/playersvc/internal/jsonpatch"
	"github.com/mcoot/playersvc/internal/model"
	"github.com/mcoot/playersvc/internal/storage"
	"github.com/mcoot/playersvc/internal/testutil"
	"github.com/mcoot/playersvc/internal/validation"
)

// mockStorage records storage calls so tests can assert which ones happened
type mockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*mockStorage)(nil)

func (m *mockStorage) QueryPlayers(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, error) {
	args := m.Called(ctx, filter)
	players, _ := args.Get(0).([]*model.Player)
	return players, args.Error(1)
}

func (m *mockStorage) CountPlayers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockStorage) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	args := m.Called(ctx, id)
	player, _ := args.Get(0).(*model.Player)
	return player, args.Error(1)
}

func (m *mockStorage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	args := m.Called(ctx, player)
	created, _ := args.Get(0).(*model.Player)
	return created, args.Error(1)
}

func (m *mockStorage) UpdatePlayer(ctx context.Context, old, updated *model.Player) (*model.Player, error) {
	args := m.Called(ctx, old, updated)
	if fn, ok := args.Get(0).(func(context.Context, *model.Player, *model.Player) *model.Player); ok {
		return fn(ctx, old, updated), args.Error(1)
	}
	result, _ := args.Get(0).(*model.Player)
	return result, args.Error(1)
}

type ServiceSuite struct {
	suite.Suite
	storage *mockStorage
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = new(mockStorage)
	s.service = New(s.storage, jsonpatch.NewPatcher(), validation.New(), codec.New(), testutil.NopLogger())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) alice() *model.Player {
	return &model.Player{
		ID:          "42",
		Name:        "Alice",
		Position:    model.PositionForward,
		Nationality: "GB",
		Age:         24,
		Rating:      77,
		CreatedAt:   s.now,
	}
}

// expectUpdate makes UpdatePlayer echo the stored result for any candidate
func (s *ServiceSuite) expectUpdate(original *model.Player) *mock.Call {
	return s.storage.On("UpdatePlayer", s.ctx, original, mock.Anything).
		Return(func(_ context.Context, old, updated *model.Player) *model.Player {
			return storage.Replacement(old, updated)
		}, nil)
}

// List tests

func (s *ServiceSuite) TestListReturnsPlayersAndUnfilteredTotal() {
	filter := model.PlayerFilter{Position: model.PositionForward}
	players := []*model.Player{s.alice()}
	s.storage.On("QueryPlayers", s.ctx, filter).Return(players, nil)
	s.storage.On("CountPlayers", s.ctx).Return(5, nil)

	result, total, err := s.service.List(s.ctx, filter)
	s.Require().NoError(err)
	s.Equal(players, result)
	s.Equal(5, total)
}

func (s *ServiceSuite) TestListNoMatchKeepsTotal() {
	filter := model.PlayerFilter{Name: "nobody"}
	s.storage.On("QueryPlayers", s.ctx, filter).Return([]*model.Player{}, nil)
	s.storage.On("CountPlayers", s.ctx).Return(3, nil)

	result, total, err := s.service.List(s.ctx, filter)
	s.Require().NoError(err)
	s.Empty(result)
	s.Equal(3, total)
}

func (s *ServiceSuite) TestListInvalidFilterReportsEveryViolation() {
	minAge, maxAge := 40, 20
	filter := model.PlayerFilter{Position: "striker", MinAge: &minAge, MaxAge: &maxAge}

	_, _, err := s.service.List(s.ctx, filter)

	var filterErr *model.FilterValidationError
	s.Require().ErrorAs(err, &filterErr)
	s.ErrorIs(err, model.ErrInvalidFilter)
	s.Contains(filterErr.Violations.Fields(), "position")
	s.Contains(filterErr.Violations.Fields(), "min_age")
	s.storage.AssertNotCalled(s.T(), "QueryPlayers", mock.Anything, mock.Anything)
	s.storage.AssertNotCalled(s.T(), "CountPlayers", mock.Anything)
}

func (s *ServiceSuite) TestListStorageFailure() {
	boom := errors.New("boom")
	s.storage.On("QueryPlayers", s.ctx, model.PlayerFilter{}).Return(nil, boom)

	_, _, err := s.service.List(s.ctx, model.PlayerFilter{})
	s.ErrorIs(err, boom)
}

// Get tests

func (s *ServiceSuite) TestGetFound() {
	s.storage.On("GetPlayer", s.ctx, "42").Return(s.alice(), nil)

	player, err := s.service.Get(s.ctx, "42")
	s.Require().NoError(err)
	s.Equal(s.alice(), player)
}

func (s *ServiceSuite) TestGetNotFound() {
	s.storage.On("GetPlayer", s.ctx, "999").Return(nil, model.ErrPlayerNotFound)

	_, err := s.service.Get(s.ctx, "999")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestGetAmbiguous() {
	s.storage.On("GetPlayer", s.ctx, "42").Return(nil, model.ErrAmbiguousResult)

	_, err := s.service.Get(s.ctx, "42")
	s.ErrorIs(err, model.ErrAmbiguousResult)
}

// Create tests

func (s *ServiceSuite) TestCreateStoresDecodedPlayer() {
	stored := &model.Player{ID: "p-1", Name: "Alice", CreatedAt: s.now}
	s.storage.On("CreatePlayer", s.ctx, mock.MatchedBy(func(p *model.Player) bool {
		return p.Name == "Alice" && p.ID == ""
	})).Return(stored, nil)

	created, err := s.service.Create(s.ctx, []byte(`{"name":"Alice"}`))
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal("Alice", created.Name)
}

func (s *ServiceSuite) TestCreateMalformedPayload() {
	_, err := s.service.Create(s.ctx, []byte(`{"name":`))

	var malformed *model.MalformedPayloadError
	s.ErrorAs(err, &malformed)
	s.storage.AssertNotCalled(s.T(), "CreatePlayer", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestCreateInvalidPlayerListsEveryField() {
	_, err := s.service.Create(s.ctx, []byte(`{"name":"","position":"striker","age":5,"rating":101}`))

	var invalid *model.EntityValidationError
	s.Require().ErrorAs(err, &invalid)
	s.ElementsMatch([]string{"name", "position", "age", "rating"}, invalid.Violations.Fields())
	s.storage.AssertNotCalled(s.T(), "CreatePlayer", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestCreateRejectsUnroutableID() {
	for _, body := range []string{`{"id":"a/b","name":"Alice"}`, `{"id":"   ","name":"Bob"}`} {
		_, err := s.service.Create(s.ctx, []byte(body))

		var invalid *model.EntityValidationError
		s.Require().ErrorAs(err, &invalid, body)
		s.Equal([]string{"id"}, invalid.Violations.Fields(), body)
		s.Equal(model.RuleFormat, invalid.Violations[0].Rule, body)
	}
	s.storage.AssertNotCalled(s.T(), "CreatePlayer", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestCreateDuplicate() {
	s.storage.On("CreatePlayer", s.ctx, mock.Anything).Return(nil, model.ErrPlayerExists)

	_, err := s.service.Create(s.ctx, []byte(`{"id":"42","name":"Alice"}`))
	s.ErrorIs(err, model.ErrPlayerExists)
}

// Update tests

func (s *ServiceSuite) TestUpdateReplacesEveryField() {
	original := s.alice()
	s.expectUpdate(original)

	updated, err := s.service.Update(s.ctx, original, []byte(`{"name":"Bob"}`))
	s.Require().NoError(err)
	s.Equal(&model.Player{ID: "42", Name: "Bob", CreatedAt: s.now}, updated)
	s.Equal(s.alice(), original)
}

func (s *ServiceSuite) TestUpdateWithMatchingID() {
	original := s.alice()
	s.expectUpdate(original)

	updated, err := s.service.Update(s.ctx, original, []byte(`{"id":"42","name":"Bob"}`))
	s.Require().NoError(err)
	s.Equal("42", updated.ID)
}

func (s *ServiceSuite) TestUpdateRejectsIDChange() {
	original := s.alice()

	_, err := s.service.Update(s.ctx, original, []byte(`{"id":"43","name":"Bob"}`))

	var invalid *model.EntityValidationError
	s.Require().ErrorAs(err, &invalid)
	s.Equal([]string{"id"}, invalid.Violations.Fields())
	s.Equal(model.RuleImmutable, invalid.Violations[0].Rule)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestUpdateInvalidLeavesOriginalUnchanged() {
	original := s.alice()

	_, err := s.service.Update(s.ctx, original, []byte(`{"name":"Bob","nationality":"gbr"}`))

	var invalid *model.EntityValidationError
	s.Require().ErrorAs(err, &invalid)
	s.Equal([]string{"nationality"}, invalid.Violations.Fields())
	s.Equal(s.alice(), original)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestUpdateNotFound() {
	original := s.alice()
	s.storage.On("UpdatePlayer", s.ctx, original, mock.Anything).Return(nil, model.ErrPlayerNotFound)

	_, err := s.service.Update(s.ctx, original, []byte(`{"name":"Bob"}`))
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Patch tests

func (s *ServiceSuite) TestPatchReplaceName() {
	original := &model.Player{ID: "42", Name: "Alice"}
	s.storage.On("UpdatePlayer", s.ctx, original, &model.Player{ID: "42", Name: "Bob"}).
		Return(&model.Player{ID: "42", Name: "Bob"}, nil)

	updated, err := s.service.Patch(s.ctx, original, []byte(`[{"op":"replace","path":"/name","value":"Bob"}]`))
	s.Require().NoError(err)
	s.Equal(&model.Player{ID: "42", Name: "Bob"}, updated)
	s.Equal("Alice", original.Name)
	s.storage.AssertNumberOfCalls(s.T(), "UpdatePlayer", 1)
}

func (s *ServiceSuite) TestPatchEmptyReturnsEqualPlayer() {
	original := s.alice()
	s.expectUpdate(original)

	updated, err := s.service.Patch(s.ctx, original, []byte(`[]`))
	s.Require().NoError(err)
	s.Equal(original, updated)
}

func (s *ServiceSuite) TestPatchTestFailureIsConflict() {
	original := s.alice()

	_, err := s.service.Patch(s.ctx, original, []byte(`[
		{"op":"test","path":"/name","value":"Carol"},
		{"op":"replace","path":"/name","value":"Bob"}
	]`))

	s.ErrorIs(err, jsonpatch.ErrTestFailed)
	var patchErr *jsonpatch.Error
	s.Require().ErrorAs(err, &patchErr)
	s.Equal(0, patchErr.Index)
	s.Equal(s.alice(), original)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestPatchInvalidDocument() {
	_, err := s.service.Patch(s.ctx, s.alice(), []byte(`{"op":"replace"}`))
	s.ErrorIs(err, jsonpatch.ErrInvalidPatchDocument)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestPatchInvalidPath() {
	_, err := s.service.Patch(s.ctx, s.alice(), []byte(`[{"op":"remove","path":"/nickname"}]`))
	s.ErrorIs(err, jsonpatch.ErrInvalidOperation)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestPatchAddingUnknownFieldIsMalformed() {
	_, err := s.service.Patch(s.ctx, s.alice(), []byte(`[{"op":"add","path":"/nickname","value":"Al"}]`))
	s.ErrorIs(err, model.ErrMalformedPayload)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestPatchProducingInvalidPlayer() {
	original := s.alice()

	_, err := s.service.Patch(s.ctx, original, []byte(`[
		{"op":"replace","path":"/rating","value":150},
		{"op":"replace","path":"/name","value":""}
	]`))

	var invalid *model.EntityValidationError
	s.Require().ErrorAs(err, &invalid)
	s.ElementsMatch([]string{"name", "rating"}, invalid.Violations.Fields())
	s.Equal(s.alice(), original)
	s.storage.AssertNotCalled(s.T(), "UpdatePlayer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestPatchChangingIDIsRejected() {
	_, err := s.service.Patch(s.ctx, s.alice(), []byte(`[{"op":"replace","path":"/id","value":"43"}]`))

	var invalid *model.EntityValidationError
	s.Require().ErrorAs(err, &invalid)
	s.Equal([]string{"id"}, invalid.Violations.Fields())
}

func (s *ServiceSuite) TestPatchCannotMoveCreatedAt() {
	original := s.alice()
	s.expectUpdate(original)

	updated, err := s.service.Patch(s.ctx, original, []byte(`[{"op":"replace","path":"/created_at","value":"2030-01-01T00:00:00Z"}]`))
	s.Require().NoError(err)
	s.Equal(s.now, updated.CreatedAt)
}

func (s *ServiceSuite) TestCount() {
	s.storage.On("CountPlayers", s.ctx).Return(7, nil)

	total, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(7, total)
}
