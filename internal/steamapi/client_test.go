package steamapi

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/testutil"
)

type ClientSuite struct {
	suite.Suite
	api    *testutil.FakeWebAPI
	client *Client
	creds  model.Credentials
	ctx    context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.api = testutil.NewFakeWebAPI(s.T())
	s.client = NewClient(s.api.URL()+"/", 5*time.Second, testutil.NopLogger())
	s.creds = model.Credentials{APIKey: "secret-key", AccountID: "76561197960287930"}
	s.ctx = context.Background()
}

func (s *ClientSuite) TestGetOwnedGamesReturnsLibrary() {
	s.api.SetGames(
		model.Game{AppID: 10, Name: "Counter-Strike", PlaytimeForever: 120},
		model.Game{AppID: 440, Name: "Team Fortress 2", PlaytimeForever: 0},
	)

	games, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.Require().NoError(err)
	s.Equal([]model.Game{
		{AppID: 10, Name: "Counter-Strike", PlaytimeForever: 120},
		{AppID: 440, Name: "Team Fortress 2", PlaytimeForever: 0},
	}, games)
}

func (s *ClientSuite) TestGetOwnedGamesSendsCredentials() {
	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.Require().NoError(err)

	q := s.api.LastQuery()
	s.Equal("secret-key", q.Get("key"))
	s.Equal("76561197960287930", q.Get("steamid"))
	s.Equal("true", q.Get("include_appinfo"))
	s.Equal(1, s.api.Requests())
}

func (s *ClientSuite) TestEmptyLibraryIsNotAnError() {
	games, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.Require().NoError(err)
	s.NotNil(games)
	s.Empty(games)
}

func (s *ClientSuite) TestServerErrorIsTransient() {
	s.api.FailWith(http.StatusInternalServerError)

	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.ErrorIs(err, model.ErrTransientFetch)
	s.Contains(err.Error(), "HTTP 500")
}

func (s *ClientSuite) TestForbiddenHintsAtAPIKey() {
	s.api.FailWith(http.StatusForbidden)

	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.ErrorIs(err, model.ErrTransientFetch)
	s.Contains(err.Error(), "API_KEY")
}

func (s *ClientSuite) TestUnreachableServerIsTransientAndRedactsKey() {
	s.api.Server.Close()

	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.ErrorIs(err, model.ErrTransientFetch)
	s.NotContains(err.Error(), "secret-key")
}

func (s *ClientSuite) TestTimeoutIsTransient() {
	ctx, cancel := context.WithTimeout(s.ctx, time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := s.client.GetOwnedGames(ctx, s.creds)
	s.ErrorIs(err, model.ErrTransientFetch)
}

func (s *ClientSuite) TestMalformedBodyIsProtocolError() {
	s.api.RespondRaw("<html>maintenance</html>")

	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.ErrorIs(err, model.ErrProtocol)
}

func (s *ClientSuite) TestMissingResponseObjectIsProtocolError() {
	s.api.RespondRaw(`{"something":"else"}`)

	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.ErrorIs(err, model.ErrProtocol)
}

func (s *ClientSuite) TestWrongFieldTypeIsProtocolError() {
	s.api.RespondRaw(`{"response":{"games":[{"appid":"ten","name":"A"}]}}`)

	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.ErrorIs(err, model.ErrProtocol)
}

func (s *ClientSuite) TestDuplicateAppIDsAreProtocolError() {
	s.api.RespondRaw(`{"response":{"games":[{"appid":1,"name":"A"},{"appid":1,"name":"B"}]}}`)

	_, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.ErrorIs(err, model.ErrProtocol)
}

func (s *ClientSuite) TestIgnoresUnknownFields() {
	s.api.RespondRaw(`{"response":{"game_count":1,"games":[{"appid":7,"name":"X","playtime_forever":3,"img_icon_url":"abc","rtime_last_played":0}]}}`)

	games, err := s.client.GetOwnedGames(s.ctx, s.creds)
	s.Require().NoError(err)
	s.Equal([]model.Game{{AppID: 7, Name: "X", PlaytimeForever: 3}}, games)
}

func (s *ClientSuite) TestDefaultBaseURL() {
	c := NewClient("", 0, testutil.NopLogger())
	s.True(strings.HasPrefix(c.baseURL, "https://api.steampowered.com"))
}
