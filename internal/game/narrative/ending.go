package narrative

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Ending is the decoded classification of a finished game.
type Ending struct {
	ID          string `json:"ending_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PathType    string `json:"path_type"`
	Decisions   int    `json:"decisions"`
	Morality    int    `json:"morality"`
}

// EndingIDLength is the fixed length of an ending ID.
//
// Layout: [0] morality tier G/E/N, [1..3] boss bits, [4] V, [5] S, [6] B,
// [7] M (each letter or '-'), [8] dominant combat style initial,
// [9] strongest relationship initial.
const EndingIDLength = 10

const (
	posTier    = 0
	posBosses  = 1
	posVillage = 4
	posSecret  = 5
	posBetray  = 6
	posMercy   = 7
	posStyle   = 8
	posBond    = 9
)

// GenerateEndingID encodes the current state.
//
// Postcondition: len(result) == EndingIDLength and the result depends only on the state.
func (e *Engine) GenerateEndingID() string {
	var b strings.Builder
	b.Grow(EndingIDLength)

	switch {
	case e.morality > e.t.MoralityTier:
		b.WriteByte('G')
	case e.morality < -e.t.MoralityTier:
		b.WriteByte('E')
	default:
		b.WriteByte('N')
	}
	for i := 1; i <= 3; i++ {
		b.WriteByte(bit(e.flags[BossFlag(i)], '1', '0'))
	}
	b.WriteByte(bit(e.flags[FlagSavedVillage], 'V', '-'))
	b.WriteByte(bit(e.flags[FlagFoundSecret], 'S', '-'))
	b.WriteByte(bit(e.flags[FlagBetrayedAlly], 'B', '-'))
	b.WriteByte(bit(e.flags[FlagSparedEnemy], 'M', '-'))

	style := StyleTactical
	if !e.combatStyle.AllZero() {
		style, _ = e.combatStyle.Dominant()
	}
	b.WriteByte(initial(style))

	bond, ok := e.relationships.Dominant()
	if !ok {
		bond = DefaultRelationships[0]
	}
	b.WriteByte(initial(bond))
	return b.String()
}

func bit(set bool, on, off byte) byte {
	if set {
		return on
	}
	return off
}

func initial(s string) byte {
	if s == "" {
		return '?'
	}
	return strings.ToUpper(s[:1])[0]
}

// DecodeEnding maps an ending ID to its title, path type, and description by
// character position. Decisions and Morality are left zero.
func DecodeEnding(id string) Ending {
	at := func(i int) byte {
		if i < len(id) {
			return id[i]
		}
		return 0
	}
	end := Ending{ID: id}

	tier := at(posTier)
	switch tier {
	case 'G':
		end.Title, end.PathType = "The Light Bringer", "Hero"
	case 'E':
		end.Title, end.PathType = "The Dark Conqueror", "Villain"
	default:
		end.Title, end.PathType = "The Gray Wanderer", "Neutral"
	}

	var d strings.Builder
	d.WriteString("Your journey has come to an end. ")

	bosses := ""
	if len(id) >= posBosses+3 {
		bosses = id[posBosses : posBosses+3]
	}
	switch bosses {
	case "111":
		d.WriteString("You defeated all the great evils that plagued the land. ")
	case "000":
		d.WriteString("You walked a different path, avoiding the major conflicts. ")
	default:
		d.WriteString("You chose your battles carefully. ")
	}
	if at(posVillage) == 'V' {
		d.WriteString("The village you saved remembers your name with gratitude. ")
	}
	if at(posSecret) == 'S' {
		d.WriteString("The ancient secrets you discovered changed everything. ")
	}
	switch {
	case at(posBetray) == 'B':
		d.WriteString("Your betrayal still weighs heavily on those you left behind. ")
	case at(posMercy) == 'M':
		d.WriteString("Your mercy inspired others to seek redemption. ")
	}
	switch tier {
	case 'G':
		d.WriteString("The land flourishes under your protection, and peace reigns once more.")
	case 'E':
		d.WriteString("You rule with an iron fist, feared by all who once dared oppose you.")
	default:
		d.WriteString("You fade into legend, neither hero nor villain, but something in between.")
	}
	end.Description = d.String()
	return end
}

// CalculateEnding encodes and decodes the current state.
func (e *Engine) CalculateEnding() Ending {
	_, span := e.tracer.Start(context.Background(), "narrative.CalculateEnding")
	defer span.End()

	end := DecodeEnding(e.GenerateEndingID())
	end.Decisions = len(e.decisions)
	end.Morality = e.morality
	span.SetAttributes(
		attribute.String("ending.id", end.ID),
		attribute.String("ending.path_type", end.PathType),
	)
	e.logger.Info("ending calculated",
		zap.String("ending", end.ID),
		zap.String("path", end.PathType),
		zap.Int("decisions", end.Decisions),
	)
	return end
}
