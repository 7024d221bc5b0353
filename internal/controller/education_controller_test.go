package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/config"
	"trading_edu_backend/internal/middleware"
	"trading_edu_backend/internal/repository"
	"trading_edu_backend/internal/service"
	"trading_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testSecret = "controller-test-secret-controller-test"

type testServer struct {
	router *gin.Engine
	cat    *catalog.Catalog
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Bundled()
	if err != nil {
		t.Fatalf("Bundled() error = %v", err)
	}
	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: testSecret},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}

	store := repository.NewMemoryProgressStore()
	progress := service.NewProgressService(store, cat, service.ContextNotifier{}, service.NewStorageService(cfg), map[string]int{"basics": 3, "intermediate": 3, "pro": 3})
	quiz := service.NewQuizService(cat, nil, progress)

	edu := NewEducationController(progress, quiz)
	qc := NewQuizController(quiz)
	health := NewHealthController(nil, nil, store)

	r := gin.New()
	r.GET("/api/health", health.HealthCheck)
	g := r.Group("/api/education", middleware.AuthMiddleware(&cfg.JWT))
	g.GET("/progress", edu.GetProgress)
	g.PUT("/level", edu.SetLevel)
	g.GET("/levels/:level/modules", edu.ListModules)
	g.POST("/modules/:moduleId/select", edu.SelectModule)
	g.POST("/modules/:moduleId/view", edu.MarkViewed)
	g.POST("/cards/next", edu.NextCard)
	g.POST("/cards/prev", edu.PrevCard)
	g.DELETE("/auto-launch", edu.ClearAutoLaunch)
	g.POST("/quiz-results", edu.RecordQuizResult)
	g.GET("/stats", edu.GetStats)
	g.GET("/badges", edu.GetBadges)
	g.POST("/session/end", edu.EndSession)
	g.POST("/quiz/:moduleId/start", qc.Start)
	g.GET("/quiz", qc.Current)
	g.POST("/quiz/answer", qc.Answer)
	g.POST("/quiz/next", qc.Next)
	g.POST("/quiz/restart", qc.Restart)
	g.DELETE("/quiz", qc.Abandon)

	token, err := util.GenerateJWT("learner-1", "learner@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &testServer{router: r, cat: cat, token: token}
}

// do sends a request and decodes the envelope's data into out when non-nil.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if out != nil && w.Code == http.StatusOK {
		env := struct {
			Data json.RawMessage `json:"data"`
		}{}
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode envelope: %v", method, path, err)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("%s %s: decode data: %v\n%s", method, path, err, env.Data)
		}
	}
	return w.Code
}

type mutation struct {
	Result        json.RawMessage        `json:"result"`
	Notifications []service.Notification `json:"notifications"`
}

func kinds(ns []service.Notification) map[service.NotificationKind]int {
	out := make(map[service.NotificationKind]int)
	for _, n := range ns {
		out[n.Kind]++
	}
	return out
}

func TestEducationRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.token = ""
	if code := s.do(t, http.MethodGet, "/api/education/progress", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("GET /progress without token = %d, want 401", code)
	}
}

func TestProgressSnapshotForNewLearner(t *testing.T) {
	s := newTestServer(t)

	var view service.ProgressView
	if code := s.do(t, http.MethodGet, "/api/education/progress", nil, &view); code != http.StatusOK {
		t.Fatalf("GET /progress = %d", code)
	}
	if view.Level != "basics" {
		t.Errorf("currentLevel = %q, want basics", view.Level)
	}
	if view.Percentages.Overall != 0 {
		t.Errorf("overall = %d, want 0", view.Percentages.Overall)
	}
	if len(view.Badges) != len(s.cat.Badges()) {
		t.Errorf("badges = %d, want %d", len(view.Badges), len(s.cat.Badges()))
	}
}

func TestCardNavigationAndAutoLaunch(t *testing.T) {
	s := newTestServer(t)
	m, _ := s.cat.Module("basics-1")
	last := len(m.Flashcards) - 1

	if code := s.do(t, http.MethodPost, "/api/education/cards/next", nil, nil); code != http.StatusConflict {
		t.Errorf("next card before selecting a module = %d, want 409", code)
	}

	var cur service.Cursor
	if code := s.do(t, http.MethodPost, "/api/education/modules/basics-1/select", nil, &cur); code != http.StatusOK {
		t.Fatalf("select = %d", code)
	}
	if cur.ModuleID != "basics-1" || cur.CardIndex != 0 {
		t.Fatalf("cursor after select = %+v", cur)
	}

	var res mutation
	for i := 0; i < last; i++ {
		s.do(t, http.MethodPost, "/api/education/cards/next", nil, &res)
	}
	if err := json.Unmarshal(res.Result, &cur); err != nil {
		t.Fatal(err)
	}
	if cur.CardIndex != last || cur.AutoLaunchQuiz != "" {
		t.Fatalf("cursor on last card = %+v", cur)
	}

	if code := s.do(t, http.MethodPost, "/api/education/cards/next", nil, &res); code != http.StatusOK {
		t.Fatalf("next on last card = %d", code)
	}
	json.Unmarshal(res.Result, &cur)
	if cur.CardIndex != last {
		t.Errorf("index moved past last card: %d", cur.CardIndex)
	}
	if cur.AutoLaunchQuiz != "basics-1" {
		t.Errorf("autoLaunchQuiz = %q, want basics-1", cur.AutoLaunchQuiz)
	}
	if kinds(res.Notifications)[service.NotifyQuizReady] != 1 {
		t.Errorf("notifications = %+v, want one quiz_ready", res.Notifications)
	}

	if code := s.do(t, http.MethodDelete, "/api/education/auto-launch", nil, nil); code != http.StatusOK {
		t.Fatalf("clear auto-launch = %d", code)
	}
	cur = service.Cursor{}
	s.do(t, http.MethodPost, "/api/education/cards/prev", nil, &cur)
	if cur.CardIndex != last-1 || cur.AutoLaunchQuiz != "" {
		t.Errorf("cursor after prev = %+v", cur)
	}
}

func TestQuizFlowCompletesModule(t *testing.T) {
	s := newTestServer(t)
	m, _ := s.cat.Module("basics-1")

	if code := s.do(t, http.MethodGet, "/api/education/quiz", nil, nil); code != http.StatusNotFound {
		t.Errorf("GET /quiz without session = %d, want 404", code)
	}

	var view service.QuizView
	if code := s.do(t, http.MethodPost, "/api/education/quiz/basics-1/start", nil, &view); code != http.StatusOK {
		t.Fatalf("start quiz = %d", code)
	}
	if view.TotalQuestions != len(m.Questions) {
		t.Fatalf("totalQuestions = %d, want %d", view.TotalQuestions, len(m.Questions))
	}

	if code := s.do(t, http.MethodPost, "/api/education/quiz/answer", gin.H{}, nil); code != http.StatusBadRequest {
		t.Errorf("answer without option = %d, want 400", code)
	}
	if code := s.do(t, http.MethodPost, "/api/education/quiz/next", nil, nil); code != http.StatusConflict {
		t.Errorf("next before answering = %d, want 409", code)
	}

	var res mutation
	for i, q := range m.Questions {
		if code := s.do(t, http.MethodPost, "/api/education/quiz/answer", gin.H{"option": q.CorrectAnswer}, &view); code != http.StatusOK {
			t.Fatalf("answer %d = %d", i, code)
		}
		if view.IsCorrect == nil || !*view.IsCorrect {
			t.Fatalf("answer %d not marked correct: %+v", i, view)
		}
		if code := s.do(t, http.MethodPost, "/api/education/quiz/next", nil, &res); code != http.StatusOK {
			t.Fatalf("next %d = %d", i, code)
		}
	}

	var step service.QuizStep
	if err := json.Unmarshal(res.Result, &step); err != nil {
		t.Fatal(err)
	}
	if step.Record == nil || !step.Record.ModuleCompleted {
		t.Fatalf("final step = %+v, want completed module", step)
	}
	if step.Record.Result.Score != 100 || !step.Record.Result.Passed {
		t.Errorf("result = %+v, want passed with 100", step.Record.Result)
	}
	if step.Record.Transition == nil || step.Record.Transition.ToModuleID != "basics-2" {
		t.Errorf("transition = %+v, want basics-2", step.Record.Transition)
	}
	got := kinds(res.Notifications)
	if got[service.NotifyModuleCompleted] != 1 || got[service.NotifyBadgeUnlocked] == 0 {
		t.Errorf("notifications = %+v", res.Notifications)
	}

	var stats service.Stats
	s.do(t, http.MethodGet, "/api/education/stats", nil, &stats)
	if stats.CompletedCount != 1 || stats.QuizzesTaken != 1 || stats.AverageScore != 100 {
		t.Errorf("stats = %+v", stats)
	}

	var statuses []service.ModuleStatus
	if code := s.do(t, http.MethodGet, "/api/education/levels/basics/modules", nil, &statuses); code != http.StatusOK {
		t.Fatalf("list modules = %d", code)
	}
	if !statuses[0].IsCompleted || statuses[1].IsLocked || !statuses[2].IsLocked {
		t.Errorf("statuses = %+v", statuses)
	}

	if code := s.do(t, http.MethodPost, "/api/education/quiz/restart", nil, &view); code != http.StatusOK {
		t.Fatalf("restart = %d", code)
	}
	if view.State != service.QuizInProgress || view.QuestionIndex != 0 {
		t.Errorf("view after restart = %+v", view)
	}
	s.do(t, http.MethodDelete, "/api/education/quiz", nil, nil)
	if code := s.do(t, http.MethodGet, "/api/education/quiz", nil, nil); code != http.StatusNotFound {
		t.Errorf("GET /quiz after abandon = %d, want 404", code)
	}
}

func TestRecordQuizResultValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"missing module", gin.H{"passed": true, "score": 80, "totalQuestions": 5}, http.StatusBadRequest},
		{"unknown module", gin.H{"moduleId": "nope", "passed": true, "score": 80, "totalQuestions": 5}, http.StatusNotFound},
		{"failed attempt", gin.H{"moduleId": "basics-2", "passed": false, "score": 40, "totalQuestions": 5, "timeSpent": 30}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := s.do(t, http.MethodPost, "/api/education/quiz-results", tt.body, nil); code != tt.want {
				t.Errorf("POST /quiz-results = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestLevelRoutes(t *testing.T) {
	s := newTestServer(t)

	if code := s.do(t, http.MethodPut, "/api/education/level", gin.H{"level": "expert"}, nil); code != http.StatusBadRequest {
		t.Errorf("PUT /level expert = %d, want 400", code)
	}
	var cur service.Cursor
	if code := s.do(t, http.MethodPut, "/api/education/level", gin.H{"level": "pro"}, &cur); code != http.StatusOK {
		t.Fatalf("PUT /level pro = %d", code)
	}
	if cur.Level != "pro" {
		t.Errorf("level = %q, want pro", cur.Level)
	}
	if code := s.do(t, http.MethodGet, "/api/education/levels/expert/modules", nil, nil); code != http.StatusNotFound {
		t.Errorf("GET unknown level modules = %d, want 404", code)
	}
}

func TestEndSessionNotifiesOnce(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/education/progress", nil, nil)

	var res mutation
	s.do(t, http.MethodPost, "/api/education/session/end", nil, &res)
	if kinds(res.Notifications)[service.NotifySignedOut] != 1 {
		t.Errorf("first end = %+v, want signed_out", res.Notifications)
	}

	s.do(t, http.MethodPost, "/api/education/session/end", nil, &res)
	if len(res.Notifications) != 0 {
		t.Errorf("second end notifications = %+v, want none", res.Notifications)
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	s.token = ""
	if code := s.do(t, http.MethodGet, "/api/health", nil, nil); code != http.StatusOK {
		t.Errorf("GET /api/health = %d, want 200", code)
	}
}
