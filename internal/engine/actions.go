package engine

// Action is the closed set of mutations the engine accepts. The unexported
// marker keeps other packages from adding variants.
type Action interface {
	isAction()
	Kind() ActionKind
}

type ActionKind string

const (
	ActStartRound         ActionKind = "START_ROUND"
	ActEndRound           ActionKind = "END_ROUND"
	ActResetRound         ActionKind = "RESET_ROUND"
	ActRestartGame        ActionKind = "RESTART_GAME"
	ActSetActivePlayer    ActionKind = "SET_ACTIVE_PLAYER"
	ActNextPlayer         ActionKind = "NEXT_PLAYER"
	ActAnswerQuestion     ActionKind = "ANSWER_QUESTION"
	ActUseCard            ActionKind = "USE_CARD"
	ActAwardCard          ActionKind = "AWARD_CARD"
	ActAddPlayer          ActionKind = "ADD_PLAYER"
	ActRemovePlayer       ActionKind = "REMOVE_PLAYER"
	ActRenamePlayer       ActionKind = "RENAME_PLAYER"
	ActAdjustPoints       ActionKind = "ADJUST_POINTS"
	ActSetLives           ActionKind = "SET_LIVES"
	ActRestoreLuckyLoser  ActionKind = "RESTORE_LUCKY_LOSER"
	ActSetCurrentQuestion ActionKind = "SET_CURRENT_QUESTION"
	ActRevertQuestion     ActionKind = "REVERT_QUESTION"
	ActMarkQuestionUsed   ActionKind = "MARK_QUESTION_USED"
	ActAddQuestion        ActionKind = "ADD_QUESTION"
	ActUpdateQuestion     ActionKind = "UPDATE_QUESTION"
	ActRemoveQuestion     ActionKind = "REMOVE_QUESTION"
	ActLoadQuestions      ActionKind = "LOAD_QUESTIONS"
	ActResetQuestionPool  ActionKind = "RESET_QUESTION_POOL"
	ActSetWheelSpinning   ActionKind = "SET_WHEEL_SPINNING"
	ActSelectCategory     ActionKind = "SELECT_CATEGORY"
)

// Round lifecycle

type StartRound struct{ Round RoundType }
type EndRound struct{}
type ResetRound struct{}
type RestartGame struct{}

// Players

type SetActivePlayer struct{ PlayerID string }
type NextPlayer struct{}
type AnswerQuestion struct{ Correct bool }
type AddPlayer struct {
	ID   string
	Name string
}
type RemovePlayer struct{ PlayerID string }
type RenamePlayer struct {
	PlayerID string
	Name     string
}
type AdjustPoints struct {
	PlayerID string
	Delta    int
}
type SetLives struct {
	PlayerID string
	Lives    int
}
type RestoreLuckyLoser struct{}

// Cards

type UseCard struct {
	PlayerID string
	Card     CardType
}
type AwardCard struct {
	PlayerID string
	Card     CardType
}

// Question pool

type SetCurrentQuestion struct{ QuestionID string }
type RevertQuestion struct{ QuestionID string }
type MarkQuestionUsed struct{ QuestionID string }
type AddQuestion struct{ Question Question }
type UpdateQuestion struct{ Question Question }
type RemoveQuestion struct{ QuestionID string }
type LoadQuestions struct{ Questions []Question }
type ResetQuestionPool struct{}

// Wheel

type SetWheelSpinning struct{ Spinning bool }
type SelectCategory struct{ Category string }

func (StartRound) isAction()         {}
func (EndRound) isAction()           {}
func (ResetRound) isAction()         {}
func (RestartGame) isAction()        {}
func (SetActivePlayer) isAction()    {}
func (NextPlayer) isAction()         {}
func (AnswerQuestion) isAction()     {}
func (AddPlayer) isAction()          {}
func (RemovePlayer) isAction()       {}
func (RenamePlayer) isAction()       {}
func (AdjustPoints) isAction()       {}
func (SetLives) isAction()           {}
func (RestoreLuckyLoser) isAction()  {}
func (UseCard) isAction()            {}
func (AwardCard) isAction()          {}
func (SetCurrentQuestion) isAction() {}
func (RevertQuestion) isAction()     {}
func (MarkQuestionUsed) isAction()   {}
func (AddQuestion) isAction()        {}
func (UpdateQuestion) isAction()     {}
func (RemoveQuestion) isAction()     {}
func (LoadQuestions) isAction()      {}
func (ResetQuestionPool) isAction()  {}
func (SetWheelSpinning) isAction()   {}
func (SelectCategory) isAction()     {}

func (StartRound) Kind() ActionKind         { return ActStartRound }
func (EndRound) Kind() ActionKind           { return ActEndRound }
func (ResetRound) Kind() ActionKind         { return ActResetRound }
func (RestartGame) Kind() ActionKind        { return ActRestartGame }
func (SetActivePlayer) Kind() ActionKind    { return ActSetActivePlayer }
func (NextPlayer) Kind() ActionKind         { return ActNextPlayer }
func (AnswerQuestion) Kind() ActionKind     { return ActAnswerQuestion }
func (AddPlayer) Kind() ActionKind          { return ActAddPlayer }
func (RemovePlayer) Kind() ActionKind       { return ActRemovePlayer }
func (RenamePlayer) Kind() ActionKind       { return ActRenamePlayer }
func (AdjustPoints) Kind() ActionKind       { return ActAdjustPoints }
func (SetLives) Kind() ActionKind           { return ActSetLives }
func (RestoreLuckyLoser) Kind() ActionKind  { return ActRestoreLuckyLoser }
func (UseCard) Kind() ActionKind            { return ActUseCard }
func (AwardCard) Kind() ActionKind          { return ActAwardCard }
func (SetCurrentQuestion) Kind() ActionKind { return ActSetCurrentQuestion }
func (RevertQuestion) Kind() ActionKind     { return ActRevertQuestion }
func (MarkQuestionUsed) Kind() ActionKind   { return ActMarkQuestionUsed }
func (AddQuestion) Kind() ActionKind        { return ActAddQuestion }
func (UpdateQuestion) Kind() ActionKind     { return ActUpdateQuestion }
func (RemoveQuestion) Kind() ActionKind     { return ActRemoveQuestion }
func (LoadQuestions) Kind() ActionKind      { return ActLoadQuestions }
func (ResetQuestionPool) Kind() ActionKind  { return ActResetQuestionPool }
func (SetWheelSpinning) Kind() ActionKind   { return ActSetWheelSpinning }
func (SelectCategory) Kind() ActionKind     { return ActSelectCategory }
