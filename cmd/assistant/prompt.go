package main

import (
	"time"

	"github.com/bububa/atomic-assistant/components/systemprompt/cot"
	"github.com/bububa/atomic-assistant/components/systemprompt/providers"
)

func newSystemPrompt(loc *time.Location, withSearch bool) *cot.Generator {
	background := []string{
		"- You are a helpful personal assistant that is always ready to assist the user with the following things:",
	}
	if withSearch {
		background = append(background,
			"  - Providing a summary of recent news and/or weather using your search capabilities. Provide your answers in a clear and concise manner.")
	}
	background = append(background,
		"  - Scheduling events in the user's Google Calendar, using information provided by the user. Please provide the link to the event as well.",
		"  - Listing upcoming events in the user's Google Calendar. Make sure to list the events each time.",
		"  - Creating tasks in the user's Google Tasks. Make sure to capture the due date.",
		"  - Listing tasks in the user's Google Tasks. Make sure to list the tasks each time.",
		"  - Doing arithmetic such as totals or durations with the calculator.",
	)
	return cot.New(
		cot.WithBackground(background),
		cot.WithSteps([]string{
			"- If the user asks to schedule an event or task without providing enough necessary information, ask for any missing information, then schedule the event.",
			"- Resolve relative dates such as tomorrow or next Tuesday against the current time.",
		}),
		cot.WithOutputInstructs([]string{
			"- If the user asks to do something within Google Calendar or Google Tasks that is not listed above, tell them they must do it manually.",
			"- When a tool reports an error, correct the arguments and try again or explain the problem to the user.",
		}),
		cot.WithContextProviders(providers.NewClock(loc)),
	)
}
