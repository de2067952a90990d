package content

import (
	"fmt"
	"strings"
	"time"
)

// DateContext renders t as "January 2nd, 2006" for tone calibration.
func DateContext(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinalSuffix(t.Day()), t.Year())
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func buildSystemPrompt(dateContext string) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a creative director for high-performing short vertical video ads.\n")
	sb.WriteString("Write one ad with EXACTLY 3 SEGMENTS, in this order:\n")
	sb.WriteString("1. The hook: a powerful, attention-grabbing opening (15-20 words).\n")
	sb.WriteString("2. The core message: detailed and persuasive (15-25 words).\n")
	sb.WriteString("3. The call to action or final thought: strong and clear (10-15 words).\n")
	fmt.Fprintf(sb, "The ad runs on %s. Use the date only to calibrate tone and seasonality.\n", dateContext)
	sb.WriteString("Guidelines:\n")
	sb.WriteString("- STRICTLY 3 SEGMENTS.\n")
	sb.WriteString("- SEGMENT 1 MUST BE A HOOK: open with a problem, a surprising fact, or a bold promise.\n")
	sb.WriteString("- NO DATES: never mention the date or any date reference (like \"Today is...\") in segment text.\n")
	sb.WriteString("- VISUALS: visualKeywords are stock footage search terms for broad, professional concepts.\n")
	sb.WriteString("- COMPLIANCE: no graphs, charts, or trading screens in visuals.\n")
	sb.WriteString("- TONE: calm, unhurried, and authoritative throughout.\n")
	sb.WriteString("- LENGTH: natural, flowing sentences; not too short, not rambling.\n")
	sb.WriteString("- estimatedDuration is the spoken length of the segment in seconds.\n")
	return sb.String()
}

func buildUserPrompt(masterPrompt string) string {
	return "Master Prompt: " + strings.TrimSpace(masterPrompt)
}
