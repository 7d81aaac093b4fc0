package iptracker

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisCheckerSuite struct {
	suite.Suite
	server  *miniredis.Miniredis
	client  *redis.Client
	checker *RedisChecker
	ctx     context.Context
}

func TestRedisCheckerSuite(t *testing.T) {
	suite.Run(t, new(RedisCheckerSuite))
}

func (s *RedisCheckerSuite) SetupTest() {
	s.server = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.server.Addr()})
	s.checker = NewRedisChecker(s.client)
	s.ctx = context.Background()
}

func (s *RedisCheckerSuite) TearDownTest() {
	s.Require().NoError(s.client.Close())
}

func (s *RedisCheckerSuite) TestLinkIfNewIsOneShot() {
	known, err := s.checker.LinkIfNew(s.ctx, "user-1", "10.0.0.1")
	s.Require().NoError(err)
	s.False(known)

	known, err = s.checker.LinkIfNew(s.ctx, "user-1", "10.0.0.1")
	s.Require().NoError(err)
	s.True(known)

	known, err = s.checker.LinkIfNew(s.ctx, "user-2", "10.0.0.1")
	s.Require().NoError(err)
	s.False(known, "per-identity sets keep novelty independent")
}

func (s *RedisCheckerSuite) TestFlagRoundTrip() {
	flagged, err := s.checker.IsFlagged(s.ctx, "10.0.0.9")
	s.Require().NoError(err)
	s.False(flagged)

	s.Require().NoError(s.checker.Flag(s.ctx, "10.0.0.9", true))
	flagged, err = s.checker.IsFlagged(s.ctx, "10.0.0.9")
	s.Require().NoError(err)
	s.True(flagged)

	s.Require().NoError(s.checker.Flag(s.ctx, "10.0.0.9", false))
	flagged, err = s.checker.IsFlagged(s.ctx, "10.0.0.9")
	s.Require().NoError(err)
	s.False(flagged)
}
