package api_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/monkeyapp/internal/api"
	"github.com/vytor/monkeyapp/internal/metrics"
	"github.com/vytor/monkeyapp/internal/repository/sqlite"
	"github.com/vytor/monkeyapp/internal/services"
	"github.com/vytor/monkeyapp/internal/testutil"
)

type pinger struct{ db *sql.DB }

func (p pinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

type HandlerSuite struct {
	suite.Suite
	db     *sql.DB
	server *httptest.Server
	client *http.Client
}

func (s *HandlerSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())

	templates, err := api.LoadTemplates()
	s.Require().NoError(err)

	profileRepo := sqlite.NewProfileRepository(s.db)
	collector := metrics.NewCollector("monkeyapp_test")
	srv := &api.Server{
		ProfileService: services.NewProfileService(profileRepo, collector),
		GraphService:   services.NewGraphService(sqlite.NewFriendshipRepository(s.db), profileRepo, collector),
		Templates:      templates,
		Metrics:        collector,
		DB:             pinger{s.db},
	}
	s.server = httptest.NewServer(srv.Routes())

	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	s.client = &http.Client{Jar: jar}
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
	testutil.MustClose(s.T(), s.db)
}

func (s *HandlerSuite) get(path string) (int, string) {
	resp, err := s.client.Get(s.server.URL + path)
	s.Require().NoError(err)
	return s.read(resp)
}

func (s *HandlerSuite) post(path string, form url.Values) (int, string) {
	resp, err := s.client.PostForm(s.server.URL+path, form)
	s.Require().NoError(err)
	return s.read(resp)
}

func (s *HandlerSuite) read(resp *http.Response) (int, string) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, string(body)
}

func monkeyForm(name, email, age string) url.Values {
	return url.Values{"name": {name}, "email": {email}, "age": {age}}
}

func (s *HandlerSuite) TestNoMonkeys() {
	status, body := s.get("/monkeys")
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "No monkeys")
}

func (s *HandlerSuite) TestAddMonkey() {
	status, body := s.post("/monkeys", monkeyForm("newmonkeyname", "new@monkey.fi", "3"))
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "New monkey added")
	s.Assert().Contains(body, "newmonkeyname")

	// The flash is shown once.
	_, body = s.get("/monkeys")
	s.Assert().NotContains(body, "New monkey added")
}

func (s *HandlerSuite) TestAddMonkey_BlankAge() {
	status, body := s.post("/monkeys", monkeyForm("ageless", "ageless@monkey.fi", ""))
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "New monkey added")
	s.Assert().Contains(body, `<td class="age">None</td>`)

	var id int64
	s.Require().NoError(s.db.QueryRow(`SELECT id FROM profiles WHERE name = ?`, "ageless").Scan(&id))
	_, body = s.get(fmt.Sprintf("/monkey/%d", id))
	s.Assert().Contains(body, `<dd id="age">None</dd>`)

	_, body = s.get(fmt.Sprintf("/edit/%d", id))
	s.Assert().Contains(body, `name="age" value=""`)
}

func (s *HandlerSuite) TestAddMonkey_InvalidForms() {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"no name", monkeyForm("", "a@b.fi", "1"), "This field is required."},
		{"no email", monkeyForm("Jou", "", "1"), "This field is required."},
		{"invalid email", monkeyForm("Jou", "not-an-email", "1"), "Invalid email address."},
		{"invalid age", monkeyForm("Jou", "a@b.fi", "old"), "Not a valid integer value"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, body := s.post("/monkeys", tt.form)
			s.Assert().Equal(http.StatusUnprocessableEntity, status)
			s.Assert().Contains(body, tt.want)
			s.Assert().NotContains(body, "New monkey added")
		})
	}
}

func (s *HandlerSuite) TestAddMonkey_Duplicates() {
	testutil.InsertProfile(s.T(), s.db, "Test1", "test1@test.fi", 20)

	status, body := s.post("/monkeys", monkeyForm("Test1", "other@test.fi", "20"))
	s.Assert().Equal(http.StatusUnprocessableEntity, status)
	s.Assert().Contains(body, "Already exists")

	status, body = s.post("/monkeys", monkeyForm("Other", "test1@test.fi", "20"))
	s.Assert().Equal(http.StatusUnprocessableEntity, status)
	s.Assert().Contains(body, "Already exists")
}

func (s *HandlerSuite) TestAddMonkey_DuplicateNameAndEmail() {
	testutil.InsertProfile(s.T(), s.db, "Test1", "test1@test.fi", 20)

	status, body := s.post("/monkeys", monkeyForm("Test1", "test1@test.fi", "20"))
	s.Assert().Equal(http.StatusUnprocessableEntity, status)
	s.Assert().Equal(2, strings.Count(body, "Already exists"), "both fields should be flagged")
	s.Assert().NotContains(body, "New monkey added")
}

func (s *HandlerSuite) TestNotFound() {
	status, body := s.get("/no/such/page")
	s.Assert().Equal(http.StatusNotFound, status)
	s.Assert().Contains(body, "Page Not Found")

	status, body = s.get("/monkey/99999")
	s.Assert().Equal(http.StatusNotFound, status)
	s.Assert().Contains(body, "Page Not Found")

	status, _ = s.get("/edit/abc")
	s.Assert().Equal(http.StatusNotFound, status)
}

func (s *HandlerSuite) TestViewMonkey() {
	ids := testutil.InsertNumberedProfiles(s.T(), s.db, 10)

	status, body := s.get(fmt.Sprintf("/monkey/%d", ids[9]))
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "test9@test.fi")
	s.Assert().Contains(body, "None")
}

func (s *HandlerSuite) TestAddFriend() {
	ids := testutil.InsertNumberedProfiles(s.T(), s.db, 3)
	path := fmt.Sprintf("/monkey/%d", ids[0])

	status, body := s.post(path, url.Values{"user": {fmt.Sprint(ids[1])}})
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "Friend added")

	friends := strings.Index(body, `id="friends"`)
	addFriend := strings.Index(body, `id="add-friend"`)
	s.Require().Positive(friends)
	name := strings.Index(body[friends:], "Test1")
	s.Require().Positive(name)
	s.Assert().Less(friends+name, addFriend)

	s.Assert().Equal([]int64{ids[0]}, testutil.FriendRows(s.T(), s.db, ids[1]))

	// Already a friend, so no longer a valid choice.
	_, body = s.post(path, url.Values{"user": {fmt.Sprint(ids[1])}})
	s.Assert().Contains(body, "Form not valid")
	_, body = s.post(path, url.Values{"user": {"garbage"}})
	s.Assert().Contains(body, "Form not valid")
}

func (s *HandlerSuite) TestBestFriend() {
	ids := testutil.InsertNumberedProfiles(s.T(), s.db, 3)
	path := fmt.Sprintf("/monkey/%d/add_best_friend/", ids[0])

	_, body := s.post(path, url.Values{"user": {fmt.Sprint(ids[1])}})
	s.Assert().Contains(body, "Form not valid")
	s.Assert().Nil(testutil.BestFriendOf(s.T(), s.db, ids[0]))

	_, err := s.db.Exec(`INSERT INTO friendships (profile_id, friend_id) VALUES (?, ?), (?, ?)`, ids[0], ids[1], ids[1], ids[0])
	s.Require().NoError(err)

	status, body := s.post(path, url.Values{"user": {fmt.Sprint(ids[1])}})
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "Best friend updated")
	s.Assert().Contains(body, "Test1")
	bf := testutil.BestFriendOf(s.T(), s.db, ids[0])
	s.Require().NotNil(bf)
	s.Assert().Equal(ids[1], *bf)

	_, body = s.post(path, url.Values{"user": {""}})
	s.Assert().Contains(body, "Best friend updated")
	s.Assert().Nil(testutil.BestFriendOf(s.T(), s.db, ids[0]))

	status, _ = s.get(path)
	s.Assert().Equal(http.StatusOK, status)
}

func (s *HandlerSuite) TestRemoveFriend() {
	ids := testutil.InsertNumberedProfiles(s.T(), s.db, 2)
	path := fmt.Sprintf("/remove_friend/%d/%d", ids[0], ids[1])
	_, err := s.db.Exec(`INSERT INTO friendships (profile_id, friend_id) VALUES (?, ?), (?, ?)`, ids[0], ids[1], ids[1], ids[0])
	s.Require().NoError(err)

	status, body := s.get(path)
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "Sure to remove friendship")
	s.Assert().Contains(body, "Test0")
	s.Assert().Contains(body, "Test1")

	_, body = s.post(path, nil)
	s.Assert().Contains(body, "Friendship removed")
	s.Assert().Empty(testutil.FriendRows(s.T(), s.db, ids[0]))

	_, body = s.post(path, nil)
	s.Assert().Contains(body, "Couldnt remove friendship")

	status, body = s.get(path)
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "Test0 and Test1 are not friends")
	s.Assert().NotContains(body, "Sure to remove friendship")
}

func (s *HandlerSuite) TestEditMonkey() {
	ids := testutil.InsertNumberedProfiles(s.T(), s.db, 2)
	path := fmt.Sprintf("/edit/%d", ids[0])

	status, body := s.get(path)
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "Test0")

	status, body = s.post(path, monkeyForm("Joumies", "test0@test.fi", "21"))
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "Monkey updated")
	s.Assert().Contains(body, "Joumies")

	status, body = s.post(path, monkeyForm("Test1", "test0@test.fi", "21"))
	s.Assert().Equal(http.StatusUnprocessableEntity, status)
	s.Assert().Contains(body, "Already exists")

	status, body = s.post(path, monkeyForm("Joumies", "broken", "21"))
	s.Assert().Equal(http.StatusUnprocessableEntity, status)
	s.Assert().Contains(body, "Invalid email")
}

func (s *HandlerSuite) TestRemoveMonkey() {
	ids := testutil.InsertNumberedProfiles(s.T(), s.db, 1)
	path := fmt.Sprintf("/remove/%d", ids[0])

	_, body := s.get(path)
	s.Assert().Contains(body, "Sure to remove")

	status, body := s.post(path, nil)
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, "Monkey removed")
	s.Assert().Contains(body, "No monkeys")
}

func (s *HandlerSuite) TestListOrdering() {
	testutil.InsertProfile(s.T(), s.db, "b", "b@aa.fi", 30)
	testutil.InsertProfile(s.T(), s.db, "a", "a@aa.fi", 10)

	_, body := s.get("/monkeys?ord=-age")
	s.Assert().Less(strings.Index(body, ">b</a>"), strings.Index(body, ">a</a>"))

	_, body = s.get("/monkeys?ord=age")
	s.Assert().Less(strings.Index(body, ">a</a>"), strings.Index(body, ">b</a>"))

	status, _ := s.get("/monkeys?ord=nonsense")
	s.Assert().Equal(http.StatusOK, status)
}

func (s *HandlerSuite) TestOperationalEndpoints() {
	status, body := s.get("/healthz")
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Equal("OK", body)

	status, _ = s.get("/readyz")
	s.Assert().Equal(http.StatusOK, status)

	s.get("/monkeys")
	status, body = s.get("/metrics")
	s.Assert().Equal(http.StatusOK, status)
	s.Assert().Contains(body, `route="/monkeys"`)
}

func (s *HandlerSuite) TestRequestIDHeader() {
	resp, err := s.client.Get(s.server.URL + "/healthz")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Assert().NotEmpty(resp.Header.Get("X-Request-Id"))
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}
