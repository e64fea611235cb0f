// Package guard decides whether a command may run for the current session.
package guard

import (
	"github.com/dmitrijs2005/pdflearn/internal/client/services"
	"github.com/dmitrijs2005/pdflearn/internal/common"
)

const (
	LoginRoute = common.RouteLogin
	HomeRoute  = common.RouteHome

	CheckingMessage = "Checking authentication..."
)

type Kind int

const (
	// Render runs the guarded command.
	Render Kind = iota
	// Wait shows the loading message instead of the command.
	Wait
	// Redirect sends the user to Decision.To.
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

type Decision struct {
	Kind    Kind
	To      string
	Message string
}

type Guard interface {
	Decide(s services.Snapshot) Decision
}

type protected struct{}

type public struct{}

type none struct{}

// Protected admits only authenticated users and redirects others to login.
func Protected() Guard { return protected{} }

// Public admits only anonymous users and redirects signed-in users home.
func Public() Guard { return public{} }

// Open admits everyone regardless of session state.
func Open() Guard { return none{} }

func (protected) Decide(s services.Snapshot) Decision {
	if s.IsLoading {
		return Decision{Kind: Wait, Message: CheckingMessage}
	}
	if !s.IsAuthenticated {
		return Decision{Kind: Redirect, To: LoginRoute}
	}
	return Decision{Kind: Render}
}

func (public) Decide(s services.Snapshot) Decision {
	if s.IsLoading {
		return Decision{Kind: Wait, Message: CheckingMessage}
	}
	if s.IsAuthenticated {
		return Decision{Kind: Redirect, To: HomeRoute}
	}
	return Decision{Kind: Render}
}

func (none) Decide(services.Snapshot) Decision { return Decision{Kind: Render} }
