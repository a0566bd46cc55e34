package flow

import (
	"strconv"

	"github.com/aescanero/survey/pkg/domain"
)

// Fixed routes
const (
	PathRoot     = "/"
	PathBegin    = "/begin"
	PathAnswer   = "/answer"
	PathComplete = "/complete"
)

// QuestionPath returns the route of the question at index
func QuestionPath(index int) string {
	return "/questions/" + strconv.Itoa(index)
}

// Page identifies a rendered page
type Page string

const (
	PagePicker      Page = "picker"
	PageIntro       Page = "intro"
	PageQuestion    Page = "question"
	PageComplete    Page = "complete"
	PageAlreadyDone Page = "already_done"
)

// Result is one line of the completion summary
type Result struct {
	Prompt string
	Answer string
	Text   string
}

// Outcome is the decision taken for a request: render a page or redirect.
// Exactly one of Page and Location is set.
type Outcome struct {
	Page     Page
	Location string

	// Notice is shown once on the next rendered page
	Notice string

	Survey   *domain.Survey
	Surveys  []*domain.Survey
	Index    int
	Question *domain.Question
	Results  []Result

	// SetCompletionCookie asks the transport to mark Survey as completed
	SetCompletionCookie bool
}

// IsRedirect reports whether the outcome is a redirect
func (o Outcome) IsRedirect() bool {
	return o.Location != ""
}

func render(page Page) Outcome {
	return Outcome{Page: page}
}

func redirect(location string) Outcome {
	return Outcome{Location: location}
}

func redirectWithNotice(location, notice string) Outcome {
	return Outcome{Location: location, Notice: notice}
}
