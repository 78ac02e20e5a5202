package archive

import (
	"fmt"
	"strings"
	"time"

	chesslib "github.com/corentings/chess/v2"

	"gauntlet/internal/match"
)

const lineLength = 80

// BuildPGN renders a sealed game as one self-contained PGN record. The final
// move of an illegal-move game is written verbatim since it cannot be encoded
// as SAN.
func BuildPGN(data match.Data, event, site string, round int) string {
	var sb strings.Builder

	header := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&sb, "[%s \"%s\"]\n", name, value)
	}

	header("Event", event)
	header("Site", site)
	header("Date", data.StartedAt.Format("2006.01.02"))
	header("Round", fmt.Sprintf("%d", round))
	header("White", data.White.Config.Name)
	header("Black", data.Black.Config.Name)
	header("Result", data.ResultString())
	header("FEN", data.FEN)
	header("GameId", data.ID)
	header("GameDuration", formatDuration(data.EndedAt.Sub(data.StartedAt)))
	header("GameStartTime", data.StartedAt.Format(time.RFC3339Nano))
	header("GameEndTime", data.EndedAt.Format(time.RFC3339Nano))
	header("PlyCount", fmt.Sprintf("%d", len(data.Moves)))
	header("Termination", data.Termination.String())
	header("TimeControl", data.White.Config.Limit.TC.String())

	sb.WriteString("\n")

	moves := moveTokens(data)
	lineLen := 0
	for _, token := range moves {
		if lineLen+len(token) > lineLength && lineLen > 0 {
			sb.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(token)
		lineLen += len(token)
	}
	if lineLen > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(data.ResultString())

	return sb.String()
}

// moveTokens replays the game to encode SAN and attaches the per-move search
// comment, with the termination reason on the last move.
func moveTokens(data match.Data) []string {
	game := gameFrom(data.FEN)

	tokens := make([]string, 0, len(data.Moves))
	for i, md := range data.Moves {
		illegal := data.Termination == match.TerminationIllegalMove && i == len(data.Moves)-1

		var text string
		if game != nil && !illegal {
			pos := game.Position()
			notation := chesslib.UCINotation{}
			if mv, err := notation.Decode(pos, md.Move); err == nil {
				text = chesslib.AlgebraicNotation{}.Encode(pos, mv)
				if err := game.PushNotationMove(md.Move, chesslib.UCINotation{}, nil); err != nil {
					game = nil
				}
			} else {
				game = nil
			}
		}
		if text == "" {
			text = md.Move
		}

		var sb strings.Builder
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		}
		sb.WriteString(text)

		comment := fmt.Sprintf("%s/%d %s", scoreString(md.Score), md.Depth, formatElapsed(md.Elapsed))
		if i == len(data.Moves)-1 && data.Reason != "" {
			comment += ", " + data.Reason
		}
		fmt.Fprintf(&sb, " {%s}", comment)

		tokens = append(tokens, sb.String())
	}
	return tokens
}

func gameFrom(fen string) *chesslib.Game {
	if fen == "" {
		return chesslib.NewGame()
	}
	opt, err := chesslib.FEN(fen)
	if err != nil {
		return nil
	}
	return chesslib.NewGame(opt)
}

func scoreString(cp int) string {
	return fmt.Sprintf("%+.2f", float64(cp)/100)
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
