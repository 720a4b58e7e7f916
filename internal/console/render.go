package console

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
	"github.com/letsssgooo/learnWithJasper/internal/events/sender"
	"github.com/letsssgooo/learnWithJasper/internal/leaderboard"
	"github.com/letsssgooo/learnWithJasper/internal/quiz"
)

func (a *App) renderProblem(snap quiz.Snapshot) {
	if snap.Problem == nil {
		return
	}

	a.send(fmt.Sprintf("Question %d/%d   Score %d   Time %s",
		snap.Attempted+1, snap.MaxQuestions, snap.Score, snap.TimeLeft()), sender.StylePlain)
	a.send(fmt.Sprintf("  %s = ?", snap.Problem), sender.StyleHeader)
	a.send(snap.Message, toneStyle(snap.Tone))
}

func (a *App) renderInput(snap quiz.Snapshot) {
	a.send("Answer: "+snap.Input, sender.StylePlain)
}

func (a *App) renderResults(snap quiz.Snapshot) {
	a.send(snap.Message, toneStyle(snap.Tone))

	if snap.LastResult == nil {
		return
	}

	r := snap.LastResult
	a.send("Results", sender.StyleHeader)
	a.send(fmt.Sprintf("  Score:    %d/%d", r.Score, r.Attempted), sender.StylePlain)
	a.send(fmt.Sprintf("  Accuracy: %d%%", r.Accuracy()), sender.StylePlain)
	a.send(fmt.Sprintf("  Outcome:  %s", r.Outcome().Label()), sender.StylePlain)
}

func (a *App) renderState(snap quiz.Snapshot) {
	switch {
	case snap.ResultsVisible:
		a.renderResults(snap)
	case snap.Problem == nil:
		a.send(msgNoProblem, sender.StyleInfo)
	default:
		a.renderProblem(snap)
		a.renderInput(snap)
	}

	a.send(fmt.Sprintf(msgSelectedTables, joinInts(snap.Tables)), sender.StylePlain)
}

func (a *App) renderUser(user models.UserRecord) {
	a.send(fmt.Sprintf("%s (%s)", user.DisplayName, user.Username), sender.StyleHeader)

	if user.Email != "" {
		a.send("  Email:    "+user.Email, sender.StylePlain)
	}
	if user.Birthday != nil {
		a.send("  Birthday: "+user.Birthday.Format(models.BirthdayLayout), sender.StylePlain)
	}
	a.send(fmt.Sprintf("  Sessions: %d", len(user.ScoreHistory)), sender.StylePlain)
}

func (a *App) renderHistory(history []models.SessionResult) {
	if len(history) == 0 {
		a.send(msgNoHistory, sender.StyleInfo)
		return
	}

	summary := leaderboard.Summarize(history)
	a.send("History", sender.StyleHeader)
	a.send(fmt.Sprintf("  Total score: %d/%d   Accuracy: %d%%   Sessions: %d",
		summary.TotalScore, summary.TotalAttempted, summary.Accuracy, summary.Sessions), sender.StylePlain)

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "  Date\tScore\tAccuracy\tOutcome")
	for _, r := range history {
		_, _ = fmt.Fprintf(w, "  %s\t%d/%d\t%d%%\t%s\n", r.Date, r.Score, r.Attempted, r.Accuracy(), r.Outcome().Label())
	}
	_ = w.Flush()

	a.send(strings.TrimRight(buf.String(), "\n"), sender.StylePlain)
}

func (a *App) renderLeaderboard(entries []leaderboard.Entry) {
	if len(entries) == 0 {
		a.send(msgEmptyBoard, sender.StyleInfo)
		return
	}

	a.send("Leaderboard", sender.StyleHeader)

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "  #\tPlayer\tScore\tAttempted\tWin rate")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "  %d\t%s (%s)\t%d\t%d\t%d%%\n", e.Rank, e.DisplayName, e.Username, e.TotalScore, e.TotalAttempted, e.WinRate)
	}
	_ = w.Flush()

	a.send(strings.TrimRight(buf.String(), "\n"), sender.StylePlain)
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}

	return strings.Join(parts, ", ")
}
