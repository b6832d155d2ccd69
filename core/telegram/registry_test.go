package telegram

import (
	"testing"

	"github.com/m3rciful/applybot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noopHandler(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "start", Aliases: []string{"menu"}})
	reg.RegisterCommand("/cancel", commands.Command{Handler: noopHandler, Description: "cancel", Global: true})
	reg.RegisterCommand("/applications", commands.Command{Handler: noopHandler, Description: "pending", Global: true, AdminOnly: true})
	reg.RegisterCommand("nope", commands.Command{Handler: noopHandler, Description: "x"})
	reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "dup"})

	if n := len(reg.Commands()); n != 3 {
		t.Fatalf("commands = %d, want 3", n)
	}
	if key, _, ok := reg.LookupCommand("/menu"); !ok || key != "/start" {
		t.Fatalf("alias lookup = %q %v", key, ok)
	}
	if n := len(reg.GlobalCommands()); n != 2 {
		t.Fatalf("global = %d, want 2", n)
	}
	public := reg.ListCommands(true)
	if len(public) != 2 || public[0].Text != "/cancel" || public[1].Text != "/start" {
		t.Fatalf("public = %+v", public)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %+v", all)
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("approve", noopHandler); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("approve", noopHandler); err == nil {
		t.Fatal("duplicate accepted")
	}
	if err := reg.RegisterCallback("", noopHandler); err == nil {
		t.Fatal("empty key accepted")
	}
	if _, ok := reg.GetCallback("approve"); !ok {
		t.Fatal("callback missing")
	}
	if reg.CallbackNotFound() == nil {
		t.Fatal("default fallback missing")
	}
}
