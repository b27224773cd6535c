package api

import (
	"strconv"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"profilingpoll/internal/db"
	"profilingpoll/internal/poll"
	"profilingpoll/internal/walkthrough"
)

func setupPollDB(t *testing.T) *gorm.DB {
	dbConn, err := gorm.Open(sqlite.Open("file:apitest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// MIGRATE ALL MODELS USED IN TESTS!
	if err := dbConn.AutoMigrate(
		&poll.Profile{},
		&poll.Poll{},
		&poll.Question{},
		&poll.Answer{},
		&poll.AnswerProfile{},
		&walkthrough.Walkthrough{},
		&walkthrough.WalkthroughProfile{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.DB = dbConn
	return dbConn
}

func resetPollTables(t *testing.T) {
	tables := []string{
		"walkthrough_answers",
		"walkthrough_answered_questions",
		"walkthrough_profiles",
		"walkthroughs",
		"answer_profiles",
		"answers",
		"questions",
		"polls",
		"profiles",
	}
	for _, table := range tables {
		if err := db.DB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s table: %v", table, err)
		}
	}
}

// seedScenario loads the canonical two-question poll: Q1 {A1 -> X:3},
// Q2 {A2 -> X:2, A3 -> Y:5}.
type scenario struct {
	p          poll.Poll
	q1, q2     poll.Question
	a1, a2, a3 poll.Answer
	x, y       poll.Profile
}

func seedScenario(t *testing.T) scenario {
	var s scenario
	s.x = poll.Profile{Description: "x", Text: "Profile X"}
	s.y = poll.Profile{Description: "y", Text: "Profile Y", Link: "https://example.com/y", LinkText: "More about Y"}
	for _, p := range []*poll.Profile{&s.x, &s.y} {
		if err := db.DB.Create(p).Error; err != nil {
			t.Fatalf("failed to seed profile: %v", err)
		}
	}
	s.p = poll.Poll{Title: "P", Slug: "p", Active: true, Description: "a poll", FinishText: "Thanks for playing"}
	if err := db.DB.Create(&s.p).Error; err != nil {
		t.Fatalf("failed to seed poll: %v", err)
	}
	s.q1 = poll.Question{PollID: s.p.ID, Text: "Q1", Ordering: 1}
	s.q2 = poll.Question{PollID: s.p.ID, Text: "Q2", Ordering: 2}
	for _, q := range []*poll.Question{&s.q1, &s.q2} {
		if err := db.DB.Create(q).Error; err != nil {
			t.Fatalf("failed to seed question: %v", err)
		}
	}
	s.a1 = poll.Answer{QuestionID: s.q1.ID, Text: "A1"}
	s.a2 = poll.Answer{QuestionID: s.q2.ID, Text: "A2", Ordering: 1}
	s.a3 = poll.Answer{QuestionID: s.q2.ID, Text: "A3", Ordering: 2}
	for _, a := range []*poll.Answer{&s.a1, &s.a2, &s.a3} {
		if err := db.DB.Create(a).Error; err != nil {
			t.Fatalf("failed to seed answer: %v", err)
		}
	}
	weights := []poll.AnswerProfile{
		{AnswerID: s.a1.ID, ProfileID: s.x.ID, Quantifier: 3},
		{AnswerID: s.a2.ID, ProfileID: s.x.ID, Quantifier: 2},
		{AnswerID: s.a3.ID, ProfileID: s.y.ID, Quantifier: 5},
	}
	for i := range weights {
		if err := db.DB.Create(&weights[i]).Error; err != nil {
			t.Fatalf("failed to seed answer profile: %v", err)
		}
	}
	return s
}

func seedOtherPoll(t *testing.T) poll.Poll {
	other := poll.Poll{Title: "Other", Slug: "other", Active: true}
	if err := db.DB.Create(&other).Error; err != nil {
		t.Fatalf("failed to seed poll: %v", err)
	}
	return other
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func toStrUint(x uint) string {
	return strconv.FormatUint(uint64(x), 10)
}
