package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskborne/internal/config"
	"github.com/cory-johannsen/duskborne/internal/game/ai"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/event"
	"github.com/cory-johannsen/duskborne/internal/game/narrative"
	"github.com/cory-johannsen/duskborne/internal/game/npc"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
	"github.com/cory-johannsen/duskborne/internal/game/player"
	"github.com/cory-johannsen/duskborne/internal/game/session"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/world"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const strangerYAML = `
npcs:
  - name: Mysterious Stranger
    text: "Not all is as it seems in these woods. Choose your path wisely."
    choices:
      - {id: heed_stranger, text: "Tell me more.", morality: 5}
      - {id: ignore_stranger, text: "I make my own path.", morality: -5}
    followups:
      heed_stranger:
        text: "The shrine to the east hides more than offerings."
        flags: {heardRumor: true}
`

func bossArea(id, name string, flag int) *world.Area {
	return &world.Area{
		ID:        id,
		Name:      name,
		Width:     2000,
		Height:    1000,
		Platforms: []physics.Platform{{Rect: physics.Rect{X: 0, Y: 650, W: 2000, H: 350}}},
		Boss:      &world.BossSpawn{X: 1000, Y: 550, Types: []string{"warrior"}, Flag: flag},
	}
}

func testAreas(t *testing.T) *world.Manager {
	t.Helper()
	forest := &world.Area{
		ID:        "forest",
		Name:      "Darkwood Forest",
		Width:     3000,
		Height:    1000,
		Platforms: []physics.Platform{{Rect: physics.Rect{X: 0, Y: 600, W: 3000, H: 400}}},
		NPCs:      []world.NPCSpawn{{Name: "Mysterious Stranger", Rect: physics.Rect{X: 120, Y: 560, W: 30, H: 40}}},
		Portals:   []world.Portal{{Destination: "arena", Rect: physics.Rect{X: 1500, Y: 570, W: 30, H: 30}}},
	}
	arena := bossArea("boss_room", "Boss Arena", 1)
	arena.Aliases = []string{"arena"}
	m, err := world.NewManager([]*world.Area{forest, arena, bossArea("castle", "Castle", 2), bossArea("swamp", "Swamp", 3)}, "forest", zap.NewNop())
	require.NoError(t, err)
	return m
}

func testDeps(t *testing.T, clk timer.Clock) session.Deps {
	t.Helper()
	cfg := config.Default()
	cfg.Events.EncounterChance = 0
	cfg.Events.StoryChance = 0

	npcs := npc.NewCatalog(zap.NewNop())
	defs, err := npc.LoadDefinitionsFromBytes([]byte(strangerYAML))
	require.NoError(t, err)
	for _, d := range defs {
		require.NoError(t, npcs.Add(d))
	}

	return session.Deps{
		Config:   cfg,
		Areas:    testAreas(t),
		Profiles: ai.NewRegistry(zap.NewNop()),
		NPCs:     npcs,
		Events:   event.NewCatalog(),
		Clock:    clk,
		Roller:   dice.NewLoggedRoller(dice.NewSeededSource(7), zap.NewNop()),
		Tracer:   noop.NewTracerProvider().Tracer("test"),
		Logger:   zap.NewNop(),
	}
}

type rig struct {
	t     *testing.T
	ctx   context.Context
	clock *timer.ManualClock
	deps  session.Deps
	s     *session.Session
}

func newRig(t *testing.T) *rig {
	clk := timer.NewManualClock(epoch)
	deps := testDeps(t, clk)
	return &rig{t: t, ctx: context.Background(), clock: clk, deps: deps, s: session.New(uuid.New(), deps)}
}

func (r *rig) tick(in player.Input) {
	r.clock.Advance(16 * time.Millisecond)
	r.s.Tick(r.ctx, 1.0/60, in)
}

func press(actions ...player.Action) player.Input {
	return player.NewFrame().Press(actions...)
}

// play starts a game, dismisses the introduction, and lets the player land.
func (r *rig) play() {
	r.tick(press(player.ActionInteract))
	require.Equal(r.t, session.StateDialogue, r.s.State())
	r.tick(press(player.ActionInteract))
	require.Equal(r.t, session.StatePlaying, r.s.State())
	for i := 0; i < 30; i++ {
		r.tick(player.None)
	}
	require.True(r.t, r.s.Player().OnGround)
}

func styleCount(e *narrative.Engine, style string) int {
	for _, sc := range e.CombatStyle() {
		if sc.Name == style {
			return sc.Value
		}
	}
	return 0
}

func TestSession_MenuStartsGameWithIntroduction(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, session.StateMenu, r.s.State())
	assert.Nil(t, r.s.Level())

	r.tick(player.None)
	assert.Equal(t, session.StateMenu, r.s.State())

	r.tick(press(player.ActionInteract))
	assert.Equal(t, session.StateDialogue, r.s.State())
	d, ok := r.s.Narrative().CurrentDialogue()
	require.True(t, ok)
	assert.Equal(t, narrative.IntroDialogue, d)
	assert.Equal(t, "forest", r.s.Level().Area.ID)
}

func TestSession_NPCChoiceCommitReturnsToPlaying(t *testing.T) {
	r := newRig(t)
	r.play()

	r.tick(press(player.ActionInteract))
	require.Equal(t, session.StateChoice, r.s.State())
	assert.Len(t, r.s.Narrative().CurrentChoices(), 2)

	r.tick(press(player.ActionDown))
	assert.Equal(t, 1, r.s.Narrative().SelectedChoiceIndex())
	r.tick(press(player.ActionInteract))
	assert.Equal(t, session.StatePlaying, r.s.State())
	assert.Equal(t, -5, r.s.Narrative().Morality())
	require.Equal(t, 1, r.s.Narrative().DecisionCount())
	assert.Equal(t, "ignore_stranger", r.s.Narrative().Decisions()[0].ChoiceID)

	r.tick(press(player.ActionInteract))
	assert.Equal(t, session.StatePlaying, r.s.State(), "the greeting is one-shot")
}

func TestSession_NPCFollowupShownAsDialogue(t *testing.T) {
	r := newRig(t)
	r.play()
	r.tick(press(player.ActionInteract))
	r.tick(press(player.ActionInteract))
	r.tick(player.None)

	require.Equal(t, session.StateDialogue, r.s.State())
	d, _ := r.s.Narrative().CurrentDialogue()
	assert.Equal(t, "The shrine to the east hides more than offerings.", d.Text)
	assert.True(t, r.s.Narrative().Flag("heardRumor"))

	r.tick(press(player.ActionInteract))
	assert.Equal(t, session.StatePlaying, r.s.State())
}

func TestSession_PauseFreezesSimulationAndDeferredClock(t *testing.T) {
	base := timer.NewManualClock(epoch)
	clk := timer.NewPausableClock(base)
	deps := testDeps(t, clk)
	s := session.New(uuid.New(), deps)
	ctx := context.Background()
	tick := func(in player.Input) {
		base.Advance(16 * time.Millisecond)
		s.Tick(ctx, 1.0/60, in)
	}
	tick(press(player.ActionInteract))
	tick(press(player.ActionInteract))
	require.Equal(t, session.StatePlaying, s.State())

	tick(press(player.ActionPause))
	require.Equal(t, session.StatePaused, s.State())
	assert.True(t, clk.IsPaused())

	x, y := s.Player().X, s.Player().Y
	for i := 0; i < 10; i++ {
		tick(player.NewFrame().Hold(player.ActionRight))
	}
	assert.Equal(t, x, s.Player().X)
	assert.Equal(t, y, s.Player().Y)

	tick(press(player.ActionPause))
	assert.Equal(t, session.StatePlaying, s.State())
	assert.False(t, clk.IsPaused())
	assert.Equal(t, 11*16*time.Millisecond, clk.TotalPaused())
}

func TestSession_BossDefeatSetsFlagAndAnnounces(t *testing.T) {
	r := newRig(t)
	r.play()
	r.s.LoadArea(r.ctx, "arena")
	require.Len(t, r.s.Level().Bosses(), 1)

	r.s.Level().Bosses()[0].Health.Kill()
	r.tick(player.None)

	assert.True(t, r.s.Narrative().Flag(narrative.BossFlag(1)))
	assert.Equal(t, session.StateDialogue, r.s.State())
	d, _ := r.s.Narrative().CurrentDialogue()
	assert.Equal(t, "System", d.Speaker)
	assert.Equal(t, "You defeated the warrior boss! A great evil has been vanquished.", d.Text)
}

func (r *rig) defeatBossIn(area string) {
	r.s.LoadArea(r.ctx, area)
	r.s.Level().Bosses()[0].Health.Kill()
	r.tick(player.None)
	if r.s.State() == session.StateDialogue {
		r.tick(press(player.ActionInteract))
	}
}

func TestSession_RepeatedArenaBossKeepsOneFlag(t *testing.T) {
	r := newRig(t)
	r.play()
	for i := 0; i < 5; i++ {
		r.defeatBossIn("boss_room")
	}
	assert.True(t, r.s.Narrative().Flag(narrative.BossFlag(1)))
	assert.False(t, r.s.Narrative().Flag(narrative.BossFlag(2)))
	assert.False(t, r.s.Narrative().Flag(narrative.BossFlag(3)))
	assert.NotEqual(t, session.StateEnding, r.s.State())
}

func TestSession_EachBossAreaSetsItsOwnFlag(t *testing.T) {
	r := newRig(t)
	r.play()
	r.defeatBossIn("swamp")
	assert.True(t, r.s.Narrative().Flag(narrative.BossFlag(3)))
	assert.False(t, r.s.Narrative().Flag(narrative.BossFlag(1)))

	r.defeatBossIn("castle")
	assert.True(t, r.s.Narrative().Flag(narrative.BossFlag(2)))
	assert.False(t, r.s.Narrative().Flag(narrative.BossFlag(1)))
	assert.NotEqual(t, session.StateEnding, r.s.State())

	r.defeatBossIn("arena")
	require.Equal(t, session.StateEnding, r.s.State())
	assert.Equal(t, "111", r.s.Ending().ID[1:4])
}

func TestPropertyBossFlagsFollowDistinctAreas(t *testing.T) {
	areas := []string{"boss_room", "castle", "swamp"}
	rapid.Check(t, func(rt *rapid.T) {
		r := newRig(t)
		r.play()
		picks := rapid.SliceOfN(rapid.IntRange(0, len(areas)-1), 1, 8).Draw(rt, "picks")
		visited := make(map[int]bool)
		for _, p := range picks {
			if r.s.State() == session.StateEnding {
				break
			}
			r.defeatBossIn(areas[p])
			visited[p+1] = true
		}
		for flag := 1; flag <= world.BossFlagSlots; flag++ {
			if r.s.Narrative().Flag(narrative.BossFlag(flag)) != visited[flag] {
				rt.Fatalf("flag %d set=%v after visiting %v", flag, !visited[flag], picks)
			}
		}
	})
}

func TestSession_DeathEndsGameAndInteractReturnsToMenu(t *testing.T) {
	r := newRig(t)
	r.play()
	r.s.Player().Health.Damage(1000)
	r.tick(player.None)
	assert.Equal(t, session.StateGameOver, r.s.State())

	r.tick(press(player.ActionInteract))
	assert.Equal(t, session.StateMenu, r.s.State())

	r.tick(press(player.ActionInteract))
	assert.Equal(t, session.StateDialogue, r.s.State())
	assert.True(t, r.s.Player().Alive())
	assert.Equal(t, r.s.Player().Health.MaxHP, r.s.Player().Health.HP)
}

func TestSession_ThreeBossFlagsTriggerEnding(t *testing.T) {
	r := newRig(t)
	r.play()
	for i := 1; i <= 3; i++ {
		r.s.Narrative().SetFlag(narrative.BossFlag(i), true)
	}
	r.tick(player.None)

	require.Equal(t, session.StateEnding, r.s.State())
	ending := r.s.Ending()
	assert.Len(t, ending.ID, narrative.EndingIDLength)
	assert.Equal(t, "111", ending.ID[1:4])
	assert.NotEmpty(t, ending.Title)
}

func TestSession_InteractAtPortalLoadsDestination(t *testing.T) {
	r := newRig(t)
	r.play()
	r.s.Player().Place(1500, 560)
	r.tick(press(player.ActionInteract))

	assert.Equal(t, "boss_room", r.s.Level().Area.ID)
	assert.Equal(t, session.StartX, r.s.Player().X)
	assert.Equal(t, session.StatePlaying, r.s.State())
}

func TestSession_EnterPortalOutOfRange(t *testing.T) {
	r := newRig(t)
	r.play()
	assert.False(t, r.s.EnterPortal(r.ctx))
	assert.Equal(t, "forest", r.s.Level().Area.ID)
}

func TestSession_LoadUnknownAreaFallsBack(t *testing.T) {
	r := newRig(t)
	r.play()
	area := r.s.LoadArea(r.ctx, "sky_temple")
	assert.Equal(t, "forest", area.ID)
}

func TestSession_AttackTracksCombatStyle(t *testing.T) {
	r := newRig(t)
	r.play()
	r.tick(press(player.ActionAttack))
	assert.GreaterOrEqual(t, styleCount(r.s.Narrative(), narrative.StyleTactical), 1)
	assert.Equal(t, 0, styleCount(r.s.Narrative(), narrative.StyleAggressive))

	r.tick(press(player.ActionDodge))
	assert.GreaterOrEqual(t, styleCount(r.s.Narrative(), narrative.StyleDefensive), 1)
}

func TestSession_RandomStoryBeatAwayFromNPCs(t *testing.T) {
	clk := timer.NewManualClock(epoch)
	deps := testDeps(t, clk)
	deps.Config.Events.StoryChance = 1
	r := &rig{t: t, ctx: context.Background(), clock: clk, deps: deps, s: session.New(uuid.New(), deps)}
	r.play()
	r.s.Player().Place(800, 550)
	r.tick(press(player.ActionInteract))

	assert.True(t, r.s.Narrative().Busy())
	assert.Contains(t, []session.State{session.StateChoice, session.StateDialogue}, r.s.State())
}

func TestSession_SnapshotAndRestore(t *testing.T) {
	r := newRig(t)
	r.play()
	r.tick(press(player.ActionInteract))
	r.tick(press(player.ActionDown))
	r.tick(press(player.ActionInteract))
	r.s.Player().Health.Damage(30)

	rec := r.s.Snapshot()
	assert.Equal(t, r.s.ID, rec.ID)
	assert.Equal(t, "forest", rec.Area)
	assert.Equal(t, -5, rec.Narrative.Morality)
	assert.Equal(t, 70.0, rec.PlayerHP)
	assert.True(t, rec.SavedAt.Equal(r.clock.Now()))
	require.NoError(t, rec.Validate())

	other := session.New(uuid.New(), r.deps)
	other.Restore(r.ctx, rec)
	assert.Equal(t, session.StatePlaying, other.State())
	assert.Equal(t, "forest", other.Level().Area.ID)
	assert.Equal(t, -5, other.Narrative().Morality())
	assert.Equal(t, 1, other.Narrative().DecisionCount())
	assert.Equal(t, 70.0, other.Player().Health.HP)

	rec.PlayerHP = 0
	other.Restore(r.ctx, rec)
	assert.Equal(t, 1.0, other.Player().Health.HP)
	assert.True(t, other.Player().Alive())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "game_over", session.StateGameOver.String())
	assert.Equal(t, "unknown", session.State(99).String())
}

func TestPropertyRandomInputKeepsInvariants(t *testing.T) {
	actions := []player.Action{
		player.ActionLeft, player.ActionRight, player.ActionUp, player.ActionDown,
		player.ActionJump, player.ActionAttack, player.ActionSpecial, player.ActionDodge,
		player.ActionInteract, player.ActionPause,
	}
	rapid.Check(t, func(rt *rapid.T) {
		clk := timer.NewManualClock(epoch)
		s := session.New(uuid.New(), testDeps(t, clk))
		ctx := context.Background()
		steps := rapid.IntRange(1, 120).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			in := player.NewFrame()
			for _, a := range actions {
				if rapid.Bool().Draw(rt, string(a)) {
					in.Press(a).Hold(a)
				}
			}
			clk.Advance(16 * time.Millisecond)
			s.Tick(ctx, rapid.Float64Range(0, 1).Draw(rt, "dt"), in)

			hp := s.Player().Health
			if hp.HP < 0 || hp.HP > hp.MaxHP {
				rt.Fatalf("hp %v out of range", hp.HP)
			}
			m := s.Narrative().Morality()
			if m < -100 || m > 100 {
				rt.Fatalf("morality %d out of range", m)
			}
			if s.State() == session.StateChoice && !s.Narrative().HasPendingChoice() {
				rt.Fatalf("choice state without a pending choice")
			}
		}
	})
}
