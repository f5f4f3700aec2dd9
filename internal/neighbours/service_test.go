package neighbours

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gh "github.com/google/go-github/v68/github"
	ghub "github.com/stahnma/gh-starneighbours/internal/github"
)

// fakeGitHub serves stargazers and starred lists from maps. Missing keys
// answer 404 like GitHub does for unknown repos and users.
type fakeGitHub struct {
	stargazers map[string][]string
	starred    map[string][]string
	failUser   string

	stargazerCalls atomic.Int32
	starredCalls   atomic.Int32
	onStarred      func(user string)
}

func (f *fakeGitHub) ListStargazers(_ context.Context, owner, repo string, opts *gh.ListOptions) ([]*gh.Stargazer, *gh.Response, error) {
	f.stargazerCalls.Add(1)
	logins, ok := f.stargazers[owner+"/"+repo]
	if !ok {
		return notFound[*gh.Stargazer]()
	}
	var page []*gh.Stargazer
	for _, l := range pageOf(logins, opts) {
		page = append(page, &gh.Stargazer{User: &gh.User{Login: gh.Ptr(l)}})
	}
	return page, okResponse(), nil
}

func (f *fakeGitHub) ListStarred(ctx context.Context, user string, opts *gh.ActivityListStarredOptions) ([]*gh.StarredRepository, *gh.Response, error) {
	f.starredCalls.Add(1)
	if f.onStarred != nil {
		f.onStarred(user)
	}
	if user == f.failUser {
		return nil, nil, errors.New("connection reset by peer")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	repos, ok := f.starred[user]
	if !ok {
		return notFound[*gh.StarredRepository]()
	}
	var page []*gh.StarredRepository
	for _, full := range pageOf(repos, &opts.ListOptions) {
		owner, name, err := ghub.SplitFullName(full)
		if err != nil {
			return nil, nil, err
		}
		page = append(page, &gh.StarredRepository{Repository: &gh.Repository{
			Owner: &gh.User{Login: gh.Ptr(owner)},
			Name:  gh.Ptr(name),
		}})
	}
	return page, okResponse(), nil
}

func pageOf(items []string, opts *gh.ListOptions) []string {
	start := (opts.Page - 1) * opts.PerPage
	if start >= len(items) {
		return nil
	}
	return items[start:min(start+opts.PerPage, len(items))]
}

func okResponse() *gh.Response {
	return &gh.Response{Response: &http.Response{StatusCode: http.StatusOK}}
}

func notFound[T any]() ([]T, *gh.Response, error) {
	resp := &gh.Response{Response: &http.Response{StatusCode: http.StatusNotFound}}
	return nil, resp, &gh.ErrorResponse{Response: resp.Response, Message: "Not Found"}
}

func newTestService(f *fakeGitHub) *Service {
	return NewService(f, DefaultOptions())
}

func TestGetNeighbours_NoStargazers(t *testing.T) {
	f := &fakeGitHub{stargazers: map[string][]string{"tony_stark/iron_man": {}}}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
	if n := f.starredCalls.Load(); n != 0 {
		t.Errorf("expected no starred requests, got %d", n)
	}
}

func TestGetNeighbours_UnknownRepository(t *testing.T) {
	f := &fakeGitHub{}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "missing")
	if err != nil {
		t.Fatalf("404 should not fail, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestGetNeighbours_OneNeighbour(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor"}},
		starred:    map[string][]string{"thor": {"odin/mjolnir", "fury/shield"}},
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	want := []Neighbour{
		{Repo: "odin/mjolnir", Stargazers: []string{"thor"}},
		{Repo: "fury/shield", Stargazers: []string{"thor"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetNeighbours_MultipleNeighbours(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor", "nick_fury"}},
		starred: map[string][]string{
			"thor":      {"odin/mjolnir", "fury/shield"},
			"nick_fury": {"fury/shield", "stark/jarvis", "thanos/infinity_gems"},
		},
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	want := []Neighbour{
		{Repo: "odin/mjolnir", Stargazers: []string{"thor"}},
		{Repo: "fury/shield", Stargazers: []string{"nick_fury", "thor"}},
		{Repo: "stark/jarvis", Stargazers: []string{"nick_fury"}},
		{Repo: "thanos/infinity_gems", Stargazers: []string{"nick_fury"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetNeighbours_OrderIndependentOfCompletion(t *testing.T) {
	// thor answers last, but his repos still come first.
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor", "nick_fury"}},
		starred: map[string][]string{
			"thor":      {"odin/mjolnir"},
			"nick_fury": {"fury/shield"},
		},
		onStarred: func(user string) {
			if user == "thor" {
				time.Sleep(50 * time.Millisecond)
			}
		},
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Repo != "odin/mjolnir" || got[1].Repo != "fury/shield" {
		t.Errorf("got %v, want odin/mjolnir then fury/shield", got)
	}
}

func TestGetNeighbours_ExcludesTarget(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor", "hulk"}},
		starred: map[string][]string{
			"thor": {"tony_stark/iron_man", "odin/mjolnir"},
			"hulk": {"banner/gamma", "tony_stark/iron_man"},
		},
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range got {
		if n.Repo == "tony_stark/iron_man" {
			t.Fatalf("target repository present in result: %v", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("got %v, want 2 neighbours", got)
	}
}

func TestGetNeighbours_KeepsSameNameOtherOwner(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor"}},
		starred:    map[string][]string{"thor": {"marvel/iron_man"}},
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Repo != "marvel/iron_man" {
		t.Errorf("got %v, want marvel/iron_man kept", got)
	}
}

func TestGetNeighbours_SortedUniqueStargazers(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"zemo", "thor", "hulk", "thor"}},
		starred: map[string][]string{
			"zemo": {"fury/shield"},
			"thor": {"fury/shield", "fury/shield"},
			"hulk": {"fury/shield"},
		},
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	want := []Neighbour{{Repo: "fury/shield", Stargazers: []string{"hulk", "thor", "zemo"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetNeighbours_StarredNotFound(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"ghost", "thor"}},
		starred:    map[string][]string{"thor": {"odin/mjolnir"}},
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatalf("404 for one user should not fail, got %v", err)
	}
	want := []Neighbour{{Repo: "odin/mjolnir", Stargazers: []string{"thor"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetNeighbours_StarredFailure(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor", "loki", "hulk"}},
		starred: map[string][]string{
			"thor": {"odin/mjolnir"},
			"hulk": {"banner/gamma"},
		},
		failUser: "loki",
	}

	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err == nil {
		t.Fatal("expected error")
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
}

func TestGetNeighbours_StargazersFailure(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor"}},
	}
	client := &failingStargazers{fakeGitHub: f}

	_, err := NewService(client, DefaultOptions()).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err == nil {
		t.Fatal("expected error")
	}
	if n := f.starredCalls.Load(); n != 0 {
		t.Errorf("expected no starred requests, got %d", n)
	}
}

type failingStargazers struct {
	*fakeGitHub
}

func (f *failingStargazers) ListStargazers(context.Context, string, string, *gh.ListOptions) ([]*gh.Stargazer, *gh.Response, error) {
	return nil, nil, errors.New("dial tcp: i/o timeout")
}

func TestGetNeighbours_Paginated(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"a", "b", "c", "d"}},
		starred: map[string][]string{
			"a": {"x/one", "x/two", "x/three"},
			"d": {"x/three"},
		},
	}
	svc := NewService(f, Options{Page: ghub.PageOptions{PerPage: 3, MaxPages: 5}})

	got, err := svc.GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	want := []Neighbour{
		{Repo: "x/one", Stargazers: []string{"a"}},
		{Repo: "x/two", Stargazers: []string{"a"}},
		{Repo: "x/three", Stargazers: []string{"a", "d"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGetNeighbours_PageCeiling(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"a", "b", "c"}},
		starred: map[string][]string{
			"a": {"x/one"},
			"b": {"x/two"},
			"c": {"x/three"},
		},
	}
	svc := NewService(f, Options{Page: ghub.PageOptions{PerPage: 1, MaxPages: 2}})

	got, err := svc.GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %v, want neighbours of the first two stargazers only", got)
	}
	if n := f.stargazerCalls.Load(); n != 2 {
		t.Errorf("stargazer requests = %d, want 2", n)
	}
}

func TestGetNeighbours_Idempotent(t *testing.T) {
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": {"thor", "nick_fury", "hulk"}},
		starred: map[string][]string{
			"thor":      {"odin/mjolnir", "fury/shield"},
			"nick_fury": {"fury/shield", "stark/jarvis"},
			"hulk":      {"stark/jarvis", "fury/shield"},
		},
	}
	svc := newTestService(f)

	first, err := svc.GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%v\n%v", first, second)
	}
}

func TestGetNeighbours_FetchesConcurrently(t *testing.T) {
	users := []string{"a", "b", "c", "d", "e"}
	starred := make(map[string][]string)
	for _, u := range users {
		starred[u] = []string{"x/" + u}
	}

	// Every fetch blocks until all of them have started; a serial fan-out
	// would never get there.
	var arrived sync.WaitGroup
	arrived.Add(len(users))
	allArrived := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allArrived)
	}()

	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": users},
		starred:    starred,
		onStarred: func(string) {
			arrived.Done()
			select {
			case <-allArrived:
			case <-time.After(2 * time.Second):
			}
		},
	}

	start := time.Now()
	got, err := newTestService(f).GetNeighbours(context.Background(), "tony_stark", "iron_man")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(users) {
		t.Errorf("got %d neighbours, want %d", len(got), len(users))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fan-out took %v, fetches did not overlap", elapsed)
	}
}

func TestGetNeighbours_MaxConcurrency(t *testing.T) {
	users := []string{"a", "b", "c", "d", "e", "f"}
	starred := make(map[string][]string)
	for _, u := range users {
		starred[u] = []string{"x/" + u}
	}

	var inFlight, peak atomic.Int32
	f := &fakeGitHub{
		stargazers: map[string][]string{"tony_stark/iron_man": users},
		starred:    starred,
		onStarred: func(string) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
		},
	}
	svc := NewService(f, Options{Page: ghub.DefaultPageOptions(), MaxConcurrency: 2})

	if _, err := svc.GetNeighbours(context.Background(), "tony_stark", "iron_man"); err != nil {
		t.Fatal(err)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", p)
	}
}

func TestGroup(t *testing.T) {
	starred := []userStarred{
		{login: "thor", repos: []string{"odin/mjolnir", "fury/shield"}},
		{login: "nick_fury", repos: []string{"fury/shield", "tony_stark/iron_man"}},
	}

	got := group(starred, "tony_stark/iron_man")
	want := []Neighbour{
		{Repo: "odin/mjolnir", Stargazers: []string{"thor"}},
		{Repo: "fury/shield", Stargazers: []string{"nick_fury", "thor"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := group(nil, "tony_stark/iron_man"); got == nil || len(got) != 0 {
		t.Errorf("group(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey("tony_stark", "jarvis"); got != "neighbours:tony_stark/jarvis" {
		t.Errorf("CacheKey = %q, want neighbours:tony_stark/jarvis", got)
	}
}
