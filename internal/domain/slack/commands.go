package slack

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/meetingtime"
)

type CommandType string

const (
	CmdSchedule CommandType = "schedule"
	CmdOK       CommandType = "ok"
	CmdList     CommandType = "list"
	CmdCancel   CommandType = "cancel"
	CmdHelp     CommandType = "help"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw:  text,
		Args: parts[1:],
	}

	switch strings.ToLower(parts[0]) {
	case "schedule", "add":
		cmd.Type = CmdSchedule
	case "ok", "confirm":
		cmd.Type = CmdOK
	case "list", "ls":
		cmd.Type = CmdList
	case "cancel", "rm":
		cmd.Type = CmdCancel
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

var mentionRe = regexp.MustCompile(`^<@([A-Z0-9]+)(?:\|[^>]*)?>$`)

// ExtractMention returns the user id of a Slack mention token such as <@U123|name>.
func ExtractMention(token string) (string, bool) {
	m := mentionRe.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ScheduleArgs are the parts of a schedule command.
type ScheduleArgs struct {
	When     string
	Mentions []string
	Topic    string
}

// ParseSchedule splits the arguments of a schedule command into the time, the mentioned
// users and the topic. The time may be quoted or given bare; a bare time is the longest
// run of leading tokens (up to three) that forms an accepted time.
func ParseSchedule(args []string) (ScheduleArgs, error) {
	var out ScheduleArgs
	if len(args) == 0 {
		return out, domain.ErrInvalidTimeFormat
	}

	rest := args
	if isOpenQuote(args[0]) {
		end := -1
		for i, tok := range args {
			if (i > 0 || len([]rune(tok)) > 1) && isCloseQuote(tok) {
				end = i
				break
			}
		}
		if end < 0 {
			return out, domain.ErrInvalidTimeFormat
		}
		out.When = strings.Join(args[:end+1], " ")
		rest = args[end+1:]
	} else {
		for n := min(3, len(args)); n > 0; n-- {
			candidate := strings.Join(args[:n], " ")
			if meetingtime.Matches(candidate) {
				out.When = candidate
				rest = args[n:]
				break
			}
		}
		if out.When == "" {
			return out, domain.ErrInvalidTimeFormat
		}
	}

	var topic []string
	for _, tok := range rest {
		if id, ok := ExtractMention(tok); ok {
			out.Mentions = append(out.Mentions, id)
			continue
		}
		topic = append(topic, tok)
	}
	out.Topic = strings.Trim(strings.Join(topic, " "), "\"'“”")
	return out, nil
}

func isOpenQuote(tok string) bool {
	return strings.HasPrefix(tok, "\"") || strings.HasPrefix(tok, "“")
}

func isCloseQuote(tok string) bool {
	return strings.HasSuffix(tok, "\"") || strings.HasSuffix(tok, "”")
}

func GetHelpText(tiers []int) string {
	tierText := make([]string, 0, len(tiers))
	for _, t := range tiers {
		tierText = append(tierText, fmt.Sprintf("%d", t))
	}
	cmd := domain.CommandName

	return `*Available Commands:*

*Schedule:*
• ` + "`" + cmd + ` schedule "YYYY-MM-DD HH:MM AM/PM" @user1 @user2 Topic` + "`" + ` - Schedule a meeting on a date
• ` + "`" + cmd + ` schedule "HH:MM AM/PM" @user Topic` + "`" + ` - Schedule a meeting today (tomorrow if the time has passed)
• ` + "`" + cmd + ` schedule 14:30 @user Topic` + "`" + ` - Without AM/PM the next afternoon occurrence is used, else the next morning

*Reminders:*
• Reminders are sent ` + strings.Join(tierText, ", ") + ` minutes before the meeting, and when it starts
• ` + "`" + cmd + ` ok` + "`" + ` - Confirm your next meeting and skip the earlier reminders

*Manage:*
• ` + "`" + cmd + ` list` + "`" + ` - List the meetings you scheduled
• ` + "`" + cmd + ` cancel N` + "`" + ` - Cancel meeting number N from the list
• ` + "`" + cmd + ` cancel all` + "`" + ` - Cancel all the meetings you scheduled`
}
