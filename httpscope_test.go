package lifescope_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/centraunit/lifescope"
	"github.com/centraunit/lifescope/mock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
)

type HTTPScopeTestSuite struct {
	suite.Suite
	container *lifescope.Container
	manager   *lifescope.ScopeManager
	server    *httptest.Server
}

func (s *HTTPScopeTestSuite) SetupTest() {
	s.container = lifescope.New()
	s.NoError(lifescope.Register[mock.Greeter](s.container, func() (mock.Greeter, error) {
		return &mock.ScopedGreeter{Logger: &mock.MemoryLogger{}}, nil
	}, lifescope.LifetimeScoped))
	s.manager = lifescope.NewScopeManager(s.container)

	router := chi.NewRouter()
	router.Use(lifescope.RequestScope(s.manager))
	router.Get("/greet", func(w http.ResponseWriter, r *http.Request) {
		scope, ok := lifescope.ContainerFrom(r.Context())
		if !ok {
			http.Error(w, "no scope", http.StatusInternalServerError)
			return
		}
		greeter, err := lifescope.Resolve[mock.Greeter](scope)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		requestID, _ := lifescope.RequestIDFrom(r.Context())
		fmt.Fprintf(w, "%s %p %s", greeter.Greet("web"), greeter, requestID)
	})
	s.server = httptest.NewServer(router)
}

func (s *HTTPScopeTestSuite) TearDownTest() {
	s.server.Close()
	s.NoError(s.manager.Close())
}

func (s *HTTPScopeTestSuite) get(requestID string) (body string, echoedID string) {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/greet", nil)
	s.Require().NoError(err)
	if requestID != "" {
		req.Header.Set(lifescope.RequestIDHeader, requestID)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(raw), resp.Header.Get(lifescope.RequestIDHeader)
}

func (s *HTTPScopeTestSuite) TestSameRequestIDSharesScope() {
	first, _ := s.get("req-42")
	second, _ := s.get("req-42")
	s.Equal(first, second, "both calls should observe the same scoped greeter")
	s.Equal(1, s.manager.ScopeCount())
}

func (s *HTTPScopeTestSuite) TestDistinctRequestIDsGetDistinctScopes() {
	first, _ := s.get("req-a")
	second, _ := s.get("req-b")
	s.NotEqual(first, second)
	s.Equal(2, s.manager.ScopeCount())
}

func (s *HTTPScopeTestSuite) TestRequestIDGeneratedWhenAbsent() {
	_, firstID := s.get("")
	_, secondID := s.get("")
	s.NotEmpty(firstID)
	s.NotEmpty(secondID)
	s.NotEqual(firstID, secondID, "each anonymous request gets its own scope")
	s.Equal(2, s.manager.ScopeCount())
}

func TestHTTPScopeSuite(t *testing.T) {
	suite.Run(t, new(HTTPScopeTestSuite))
}
