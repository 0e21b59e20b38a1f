package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/samuel/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestLoadEmptyIsCacheMiss() {
	_, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrCacheMiss)
}

func (s *StorageSuite) TestSaveAndLoad() {
	snap := &model.Snapshot{Games: []model.Game{{AppID: 1, Name: "A"}}, FetchedAt: time.Unix(10, 0).UTC()}
	s.Require().NoError(s.storage.Save(s.ctx, snap))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(snap, loaded)
	s.Equal(1, s.storage.Saves())
}

func (s *StorageSuite) TestLoadReturnsCopy() {
	snap := &model.Snapshot{Games: []model.Game{{AppID: 1, Name: "A"}}}
	_ = s.storage.Save(s.ctx, snap)

	loaded, _ := s.storage.Load(s.ctx)
	loaded.Games[0].Name = "mutated"
	snap.Games[0].Name = "mutated too"

	again, _ := s.storage.Load(s.ctx)
	s.Equal("A", again.Games[0].Name)
}

func (s *StorageSuite) TestSaveErr() {
	s.storage.SaveErr = errors.New("disk full")
	err := s.storage.Save(s.ctx, &model.Snapshot{})
	s.EqualError(err, "disk full")
	s.Equal(0, s.storage.Saves())
}
