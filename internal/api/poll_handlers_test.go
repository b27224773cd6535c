package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"profilingpoll/internal/db"
	"profilingpoll/internal/poll"
)

func TestListPollsHandler_ActiveOnly(t *testing.T) {
	setupPollDB(t)
	resetPollTables(t)
	s := seedScenario(t)

	inactive := poll.Poll{Title: "Draft", Slug: "draft", Active: false}
	if err := db.DB.Create(&inactive).Error; err != nil {
		t.Fatalf("failed to seed poll: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/polls", ListPollsHandler())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/polls", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), s.p.Slug) {
		t.Errorf("expected active poll in response, got: %s", w.Body.String())
	}
	if contains(w.Body.String(), "draft") {
		t.Errorf("expected inactive poll to be excluded, got: %s", w.Body.String())
	}
}

func TestGetPollHandler(t *testing.T) {
	setupPollDB(t)
	resetPollTables(t)
	s := seedScenario(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/polls/:slug", GetPollHandler())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/polls/p", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		QuestionCount   int  `json:"question_count"`
		FirstQuestionID uint `json:"first_question_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.QuestionCount != 2 {
		t.Errorf("expected 2 questions, got %d", body.QuestionCount)
	}
	if body.FirstQuestionID != s.q1.ID {
		t.Errorf("expected first question %d, got %d", s.q1.ID, body.FirstQuestionID)
	}
}

func TestGetPollHandler_NotFound(t *testing.T) {
	setupPollDB(t)
	resetPollTables(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/polls/:slug", GetPollHandler())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/polls/nope", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetQuestionHandler(t *testing.T) {
	setupPollDB(t)
	resetPollTables(t)
	s := seedScenario(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/polls/:slug/questions/:id", GetQuestionHandler())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/polls/p/questions/"+toStrUint(s.q1.ID), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Index          int  `json:"index"`
		NextQuestionID uint `json:"next_question_id"`
		Answers        []struct {
			ID uint `json:"id"`
		} `json:"answers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Index != 0 {
		t.Errorf("expected index 0 for Q1, got %d", body.Index)
	}
	if body.NextQuestionID != s.q2.ID {
		t.Errorf("expected next question %d, got %d", s.q2.ID, body.NextQuestionID)
	}
	if len(body.Answers) != 1 || body.Answers[0].ID != s.a1.ID {
		t.Errorf("expected answer A1 only, got %+v", body.Answers)
	}
}

func TestGetQuestionHandler_WrongPoll(t *testing.T) {
	setupPollDB(t)
	resetPollTables(t)
	s := seedScenario(t)

	other := poll.Poll{Title: "Other", Slug: "other", Active: true}
	if err := db.DB.Create(&other).Error; err != nil {
		t.Fatalf("failed to seed poll: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/polls/:slug/questions/:id", GetQuestionHandler())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/polls/other/questions/"+toStrUint(s.q1.ID), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for question outside poll, got %d: %s", w.Code, w.Body.String())
	}
}
