package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/session"
)

const timeLayout = "Mon 02 Jan 15:04"

// PrintProfile shows the logged in user.
func PrintProfile(ctx context.Context, p *Prompter, d Dashboard) error {
	profile, err := d.Profile(ctx)
	if err != nil {
		return err
	}
	printProfile(p, profile)
	return nil
}

func printProfile(p *Prompter, profile *account.Profile) {
	p.Info(fmt.Sprintf("Username: %s", profile.Username))
	p.Info(fmt.Sprintf("Email:    %s", profile.Email))
	if name := fullName(profile); name != "" {
		p.Info(fmt.Sprintf("Name:     %s", name))
	}
	if profile.DateJoined != "" {
		p.Muted(fmt.Sprintf("Joined %s", profile.DateJoined))
	}
}

// PrintSession shows what the stored access token says about its holder.
func PrintSession(p *Prompter, sess *session.Session) {
	p.Info(fmt.Sprintf("Session:  %s", sess.Scope))
	claims, err := session.ParseClaims(sess.AccessToken)
	if err != nil {
		p.Muted("Access token is not a JWT.")
		return
	}
	if user := claims.User(); user != "" {
		p.Info(fmt.Sprintf("User ID:  %s", user))
	}
	if claims.ExpiresAt != nil {
		p.Info(fmt.Sprintf("Expires:  %s", claims.ExpiresAt.Local().Format(time.RFC1123)))
	}
}

// PrintTasks lists the user's tasks.
func PrintTasks(ctx context.Context, p *Prompter, d Dashboard) error {
	tasks, err := d.Tasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		p.Muted("No tasks yet.")
		return nil
	}
	for _, t := range tasks {
		line := fmt.Sprintf("[%s] %s", t.Status, t.Title)
		if t.DueDate != "" {
			line += " (due " + t.DueDate + ")"
		}
		p.Info(line)
	}
	return nil
}

// PrintEvents lists scheduled events.
func PrintEvents(ctx context.Context, p *Prompter, d Dashboard) error {
	events, err := d.Events(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		p.Muted("Nothing scheduled.")
		return nil
	}
	for _, e := range events {
		mark := " "
		if e.IsCompleted {
			mark = "x"
		}
		p.Info(fmt.Sprintf("[%s] %s  %s - %s", mark, e.Title, e.StartTime.Local().Format(timeLayout), e.EndTime.Local().Format("15:04")))
	}
	return nil
}

// PrintRoadmaps lists roadmaps with their steps.
func PrintRoadmaps(ctx context.Context, p *Prompter, d Dashboard) error {
	roadmaps, err := d.Roadmaps(ctx)
	if err != nil {
		return err
	}
	if len(roadmaps) == 0 {
		p.Muted("No roadmaps yet.")
		return nil
	}
	for _, r := range roadmaps {
		p.Info(r.Title)
		for _, s := range r.Steps {
			mark := " "
			if s.IsCompleted {
				mark = "x"
			}
			p.Info(fmt.Sprintf("  %d. [%s] %s", s.Order, mark, s.Title))
		}
	}
	return nil
}

// CreateRoadmap creates a roadmap for goal and reports it.
func CreateRoadmap(ctx context.Context, p *Prompter, d Dashboard, goal string) error {
	r, err := d.CreateRoadmap(ctx, goal)
	if err != nil {
		return err
	}
	p.Success(fmt.Sprintf("Roadmap %q created.", r.Title))
	return nil
}

func fullName(profile *account.Profile) string {
	switch {
	case profile.FirstName != "" && profile.LastName != "":
		return profile.FirstName + " " + profile.LastName
	case profile.FirstName != "":
		return profile.FirstName
	}
	return profile.LastName
}
