package shell

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/types"
)

const defaultMailDir = "/mail"

// Mail files are named "NNN_sender.eml,S" where S is U (unread), R (read)
// or D (deleted). Deleted messages are never listed.
const (
	mailUnread  = "U"
	mailRead    = "R"
	mailDeleted = "D"
)

type message struct {
	file    string
	status  string
	from    string
	subject string
	body    string
}

func (in *Interpreter) mail(args []string, s *types.PlayerState) (string, bool) {
	if len(args) == 0 {
		notify.Error(in.Out, "Usage: mail list|read <n>|delete <n>")
		return "", false
	}
	dir, err := in.mailDir()
	if err != nil {
		notify.Error(in.Out, "mail: mailbox unavailable")
		return "", false
	}

	switch args[0] {
	case "list":
		in.mailList(dir, s)
	case "read", "delete":
		if len(args) < 2 {
			notify.Error(in.Out, "Usage: mail %s <n>", args[0])
			return "", false
		}
		msg, idx, ok := in.mailLookup(dir, args[1], s)
		if !ok {
			return "", false
		}
		if args[0] == "read" {
			in.mailRead(dir, msg, idx, s)
		} else {
			in.mailDelete(dir, msg, idx, s)
		}
	default:
		notify.Error(in.Out, "Usage: mail list|read <n>|delete <n>")
	}
	return "", false
}

func (in *Interpreter) mailDir() (string, error) {
	virtual := in.Defs.Game.MailDir
	if virtual == "" {
		virtual = defaultMailDir
	}
	dir, _, err := Resolve(in.Root, "/", virtual)
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (in *Interpreter) mailList(dir string, s *types.PlayerState) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		in.Log.Warn("reading mail directory", "path", dir, "error", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, status := splitStatus(e.Name()); status == mailDeleted {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	// Unreadable files are left out of the cache so numbers stay contiguous.
	var msgs []message
	for _, name := range names {
		msg, err := readMessage(dir, name)
		if err != nil {
			in.Log.Warn("reading mail", "file", name, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	s.MailCache = make([]string, 0, len(msgs))
	for _, msg := range msgs {
		s.MailCache = append(s.MailCache, msg.file)
	}

	if len(msgs) == 0 {
		notify.Text(in.Out, "No messages in your inbox.")
		return
	}

	lines := []string{fmt.Sprintf("--- INBOX (%d messages) ---", len(msgs))}
	for i, msg := range msgs {
		mark := " "
		if msg.status == mailUnread {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("[%2d] %s %-15s %s", i+1, mark, msg.from, msg.subject))
	}
	notify.Text(in.Out, "%s", strings.Join(lines, "\n"))
}

// mailLookup resolves a 1-based message number against the cached listing.
func (in *Interpreter) mailLookup(dir, arg string, s *types.PlayerState) (message, int, bool) {
	if s.MailCache == nil {
		notify.Error(in.Out, "mail: no message list; run 'mail list' first")
		return message{}, 0, false
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.MailCache) {
		notify.Error(in.Out, "mail: invalid message number: %s", arg)
		return message{}, 0, false
	}

	msg, err := readMessage(dir, s.MailCache[n-1])
	if err != nil {
		notify.Error(in.Out, "mail: message %d is no longer available; run 'mail list' again", n)
		return message{}, 0, false
	}
	return msg, n - 1, true
}

func (in *Interpreter) mailRead(dir string, msg message, idx int, s *types.PlayerState) {
	if msg.status == mailDeleted {
		notify.Error(in.Out, "mail: message %d has been deleted", idx+1)
		return
	}

	body := msg.body
	if body == "" {
		body = "(No body content)"
	}
	status := "Read"
	if msg.status == mailUnread {
		status = "Unread"
	}
	notify.Text(in.Out, "--- MESSAGE #%d ---\nFrom: %s\nSubject: %s\nStatus: %s\n-------------------------------\n%s\n-------------------------------",
		idx+1, msg.from, msg.subject, status, body)

	if msg.status == mailUnread {
		in.mailMark(dir, msg, idx, mailRead, s)
	}
}

func (in *Interpreter) mailDelete(dir string, msg message, idx int, s *types.PlayerState) {
	if msg.status == mailDeleted {
		notify.Notice(in.Out, 0, "mail: message %d is already deleted", idx+1)
		return
	}
	if in.mailMark(dir, msg, idx, mailDeleted, s) {
		notify.Notice(in.Out, 0, "Message %d deleted.", idx+1)
	}
}

// mailMark renames a message file to carry a new status and updates the
// cached entry so later numbers still refer to it.
func (in *Interpreter) mailMark(dir string, msg message, idx int, status string, s *types.PlayerState) bool {
	base, _ := splitStatus(msg.file)
	renamed := base + "," + status
	if err := os.Rename(filepath.Join(dir, msg.file), filepath.Join(dir, renamed)); err != nil {
		in.Log.Error("renaming mail", "file", msg.file, "error", err)
		notify.Error(in.Out, "mail: could not update message %d", idx+1)
		return false
	}
	s.MailCache[idx] = renamed
	return true
}

// readMessage parses the From/Subject header lines and the body.
func readMessage(dir, name string) (message, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return message{}, err
	}

	base, status := splitStatus(name)
	msg := message{file: name, status: status}

	sc := bufio.NewScanner(bytes.NewReader(data))
	var body []string
	for i := 0; sc.Scan(); i++ {
		line := sc.Text()
		if i < 2 {
			trimmed := strings.TrimSpace(line)
			if v, ok := strings.CutPrefix(trimmed, "From:"); ok {
				msg.from = strings.TrimSpace(v)
				continue
			}
			if v, ok := strings.CutPrefix(trimmed, "Subject:"); ok {
				msg.subject = strings.TrimSpace(v)
				continue
			}
		}
		body = append(body, line)
	}
	if err := sc.Err(); err != nil {
		return message{}, err
	}

	if msg.from == "" {
		msg.from = senderFromName(base)
	}
	if msg.subject == "" {
		msg.subject = "(No Subject)"
	}
	msg.body = strings.TrimSpace(strings.Join(body, "\n"))
	return msg, nil
}

// splitStatus separates "001_chisa.eml,U" into its base name and status.
// Names without a status marker count as read.
func splitStatus(name string) (base, status string) {
	i := strings.LastIndex(name, ",")
	if i < 0 {
		return name, mailRead
	}
	switch st := name[i+1:]; st {
	case mailUnread, mailRead, mailDeleted:
		return name[:i], st
	}
	return name, mailRead
}

// senderFromName takes the sender from "NNN_sender.eml".
func senderFromName(base string) string {
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if _, sender, ok := strings.Cut(base, "_"); ok && sender != "" {
		return sender
	}
	return "(unknown)"
}
