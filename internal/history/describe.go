package history

import (
	"fmt"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

// Undoable reports whether an action may be reverted from the log. Catalogue
// edits are persisted straight away, so rolling back memory alone would
// desync the store.
func Undoable(a engine.Action) bool {
	switch a.(type) {
	case engine.AddQuestion, engine.UpdateQuestion, engine.RemoveQuestion,
		engine.LoadQuestions, engine.ResetQuestionPool:
		return false
	}
	return true
}

// Describe renders a host-readable line for an action against the state it
// was applied to, plus the players it touched.
func Describe(a engine.Action, prev engine.State) (string, []string) {
	name := func(id string) string {
		if p, ok := engine.FindPlayer(prev, id); ok {
			return p.Name
		}
		return id
	}

	switch act := a.(type) {
	case engine.StartRound:
		return fmt.Sprintf("Started %s round", act.Round), nil
	case engine.EndRound:
		return fmt.Sprintf("Ended %s round", prev.CurrentRound), nil
	case engine.ResetRound:
		return fmt.Sprintf("Reset %s round", prev.CurrentRound), nil
	case engine.RestartGame:
		return "Restarted game", nil
	case engine.SetActivePlayer:
		return fmt.Sprintf("%s is up", name(act.PlayerID)), []string{act.PlayerID}
	case engine.NextPlayer:
		return "Moved to next player", nil
	case engine.AnswerQuestion:
		p, ok := engine.ActivePlayer(prev)
		if !ok {
			return "Answer without active player", nil
		}
		verdict := "wrong"
		if act.Correct {
			verdict = "correct"
		}
		return fmt.Sprintf("%s answered %s", p.Name, verdict), []string{p.ID}
	case engine.UseCard:
		return fmt.Sprintf("%s used %s", name(act.PlayerID), act.Card), []string{act.PlayerID}
	case engine.AwardCard:
		return fmt.Sprintf("%s received %s", name(act.PlayerID), act.Card), []string{act.PlayerID}
	case engine.AddPlayer:
		return fmt.Sprintf("Added player %s", act.Name), []string{act.ID}
	case engine.RemovePlayer:
		return fmt.Sprintf("Removed player %s", name(act.PlayerID)), []string{act.PlayerID}
	case engine.RenamePlayer:
		return fmt.Sprintf("Renamed %s to %s", name(act.PlayerID), act.Name), []string{act.PlayerID}
	case engine.AdjustPoints:
		return fmt.Sprintf("Adjusted %s points by %+d", name(act.PlayerID), act.Delta), []string{act.PlayerID}
	case engine.SetLives:
		return fmt.Sprintf("Set %s lives to %d", name(act.PlayerID), act.Lives), []string{act.PlayerID}
	case engine.RestoreLuckyLoser:
		return "Restored lucky loser", nil
	case engine.SetCurrentQuestion:
		return fmt.Sprintf("Showed question %s", act.QuestionID), nil
	case engine.RevertQuestion:
		return fmt.Sprintf("Reverted question %s", act.QuestionID), nil
	case engine.MarkQuestionUsed:
		return fmt.Sprintf("Skipped question %s", act.QuestionID), nil
	case engine.AddQuestion:
		return fmt.Sprintf("Added question %s", act.Question.ID), nil
	case engine.UpdateQuestion:
		return fmt.Sprintf("Edited question %s", act.Question.ID), nil
	case engine.RemoveQuestion:
		return fmt.Sprintf("Removed question %s", act.QuestionID), nil
	case engine.LoadQuestions:
		return fmt.Sprintf("Loaded %d questions", len(act.Questions)), nil
	case engine.ResetQuestionPool:
		return "Reset question pool", nil
	case engine.SetWheelSpinning:
		if act.Spinning {
			return "Wheel spinning", nil
		}
		return "Wheel stopped", nil
	case engine.SelectCategory:
		return fmt.Sprintf("Category %s", act.Category), nil
	}
	return fmt.Sprintf("%T", a), nil
}
