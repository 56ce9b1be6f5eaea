package mikrotik_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fiberbill/fiberbill/internal/config"
	"github.com/fiberbill/fiberbill/internal/domain/router"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/integration/mikrotik"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	httpClient *testutil.MockHTTPClient
	client     mikrotik.Gateway
	router     *router.Router
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)

	s.httpClient = testutil.NewMockHTTPClient()
	s.client = mikrotik.NewClient(s.httpClient, cfg, log)
	s.router = &router.Router{
		ID:       "rtr_01",
		Name:     "core-1",
		Host:     "10.0.0.1",
		Port:     443,
		Username: "api",
		Password: "secret",
		UseTLS:   true,
	}
}

func (s *ClientTestSuite) registerSecret(name, id, disabled string) {
	s.httpClient.RegisterResponse(http.MethodGet, "/ppp/secret?name="+name, testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`[{".id":"` + id + `","name":"` + name + `","disabled":"` + disabled + `","profile":"50M","service":"pppoe"}]`),
	})
}

func (s *ClientTestSuite) TestDisable() {
	s.registerSecret("budi", "*12", "false")
	s.httpClient.RegisterResponse(http.MethodPatch, "/ppp/secret/%2A12", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{".id":"*12","disabled":"true"}`),
	})

	result, err := s.client.Disable(context.Background(), s.router, "budi")
	s.NoError(err)
	s.True(result.Success)

	requests := s.httpClient.Requests()
	s.Len(requests, 2)
	s.Equal(http.MethodGet, requests[0].Method)
	s.Equal(http.MethodPatch, requests[1].Method)
	s.Contains(requests[1].URL, "https://10.0.0.1:443/rest/ppp/secret/")
	s.JSONEq(`{"disabled":"true"}`, string(requests[1].Body))
	s.Equal("Basic YXBpOnNlY3JldA==", requests[1].Headers["Authorization"])
}

func (s *ClientTestSuite) TestEnable() {
	s.registerSecret("budi", "*12", "true")
	s.httpClient.RegisterResponse(http.MethodPatch, "/ppp/secret/%2A12", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{".id":"*12","disabled":"false"}`),
	})

	result, err := s.client.Enable(context.Background(), s.router, "budi")
	s.NoError(err)
	s.True(result.Success)

	requests := s.httpClient.Requests()
	s.JSONEq(`{"disabled":"false"}`, string(requests[1].Body))
}

func (s *ClientTestSuite) TestDisableSecretNotFound() {
	s.httpClient.RegisterResponse(http.MethodGet, "/ppp/secret?name=ghost", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`[]`),
	})

	result, err := s.client.Disable(context.Background(), s.router, "ghost")
	s.NoError(err)
	s.False(result.Success)
	s.Contains(result.Message, "not found")

	// no PATCH when the secret is missing
	s.Len(s.httpClient.Requests(), 1)
}

func (s *ClientTestSuite) TestDisableTransportFailure() {
	s.httpClient.FailWith(errors.New("connection refused"))

	result, err := s.client.Disable(context.Background(), s.router, "budi")
	s.Error(err)
	s.Nil(result)
	s.True(ierr.IsGatewayFailure(err))
}

func (s *ClientTestSuite) TestCheckStatus() {
	s.registerSecret("budi", "*12", "yes")

	status, err := s.client.CheckStatus(context.Background(), s.router, "budi")
	s.NoError(err)
	s.True(status.Success)
	s.True(status.Found)
	s.True(status.Disabled)
	s.Equal("50M", status.Profile)
	s.Equal("pppoe", status.Service)
}

func (s *ClientTestSuite) TestCheckStatusNotFound() {
	s.httpClient.RegisterResponse(http.MethodGet, "/ppp/secret?name=ghost", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`[]`),
	})

	status, err := s.client.CheckStatus(context.Background(), s.router, "ghost")
	s.NoError(err)
	s.True(status.Success)
	s.False(status.Found)
}
