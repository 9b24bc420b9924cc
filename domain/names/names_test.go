package names

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/duel-vision-go/domain/combat"
)

var monsterWords = []string{
	"Storm",
	"Malistaire the Undying",
	"Rattlebones",
	"Lord Nightshade",
	"Imp",
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	store := NewStore(nil, nil)
	store.Put(NewDictionary(Monster, monsterWords))
	store.Put(NewDictionary(Wizard, []string{"Alex Stormcaller", "Kestrel Ashblade"}))
	store.Put(NewDictionary(Minion, []string{"Fire Elemental"}))
	r, err := NewResolver(store, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	return r
}

func TestKindsFor(t *testing.T) {
	cases := []struct {
		mode MatchMode
		side combat.Side
		want Kind
	}{
		{PvE, combat.Ally, Wizard},
		{PvE, combat.Enemy, Monster},
		{PvP, combat.Enemy, Wizard},
		{PvP, combat.Ally, Wizard},
	}
	for _, c := range cases {
		got := KindsFor(c.mode, c.side)
		if len(got) != 2 || got[0] != c.want || got[1] != Minion {
			t.Fatalf("KindsFor(%v,%v): expected [%v minion], got %v", c.mode, c.side, c.want, got)
		}
	}
	if ParseMatchMode("pvp") != PvP || ParseMatchMode("anything") != PvE {
		t.Fatalf("unexpected match mode parsing")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  st0rm-  Walker "); got != "STRM WALKER" {
		t.Fatalf("expected STRM WALKER, got %q", got)
	}
}

func TestResolve_EditDistance(t *testing.T) {
	r := newTestResolver(t)
	res := r.Resolve("Stormm", []Kind{Monster})
	if !res.Accepted || res.Name != "Storm" {
		t.Fatalf("expected Storm, got %+v", res)
	}
	if res.Method != MethodLevenshtein || res.Distance != 1 {
		t.Fatalf("expected levenshtein distance 1, got %s %d", res.Method, res.Distance)
	}
	if res.Score < 0.83 || res.Score > 0.84 {
		t.Fatalf("expected ratio ~0.83, got %v", res.Score)
	}
}

func TestResolve_IdempotentOnDictionaryEntries(t *testing.T) {
	r := newTestResolver(t)
	for _, w := range monsterWords {
		res := r.Resolve(w, []Kind{Monster})
		if !res.Accepted || res.Name != w || res.Method != MethodExact {
			t.Fatalf("expected %q to resolve to itself, got %+v", w, res)
		}
	}
}

func TestResolve_SharedNormalFormKeepsSpelling(t *testing.T) {
	store := NewStore(nil, nil)
	store.Put(NewDictionary(Monster, []string{"Golem 2", "Golem 3"}))
	r, err := NewResolver(store, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	for _, w := range []string{"Golem 2", "Golem 3", "golem  3"} {
		res := r.Resolve(w, []Kind{Monster})
		want := "Golem " + w[len(w)-1:]
		if !res.Accepted || res.Name != want || res.Method != MethodExact {
			t.Fatalf("expected %q to resolve to %q, got %+v", w, want, res)
		}
	}
	if res := r.Resolve("Golem", []Kind{Monster}); res.Name != "Golem 2" {
		t.Fatalf("expected first spelling for the shared form, got %+v", res)
	}
}

func TestResolve_TruncatedUsesSubstring(t *testing.T) {
	r := newTestResolver(t)
	res := r.Resolve("Malistaire th...", []Kind{Monster})
	if !res.Accepted || res.Name != "Malistaire the Undying" || res.Method != MethodSubstring {
		t.Fatalf("expected substring match, got %+v", res)
	}
}

func TestResolve_TruncatedPrefix(t *testing.T) {
	r := newTestResolver(t)
	res := r.Resolve("Rattlebo.", []Kind{Monster})
	if !res.Accepted || res.Name != "Rattlebones" {
		t.Fatalf("expected Rattlebones, got %+v", res)
	}
}

func TestResolve_ConfusionTable(t *testing.T) {
	r := newTestResolver(t)
	res := r.Resolve("1mp", []Kind{Monster})
	if !res.Accepted || res.Name != "Imp" || res.Method != MethodConfusion {
		t.Fatalf("expected Imp via confusion, got %+v", res)
	}
}

func TestResolve_TokenOverlap(t *testing.T) {
	r := newTestResolver(t)
	res := r.Resolve("Malistaire the Undying Xq", []Kind{Monster})
	if !res.Accepted || res.Name != "Malistaire the Undying" || res.Method != MethodOverlap {
		t.Fatalf("expected overlap match, got %+v", res)
	}
}

func TestResolve_RejectsBelowFloor(t *testing.T) {
	r := newTestResolver(t)
	res := r.Resolve("Zzzzzz  ", []Kind{Monster})
	if res.Accepted {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if res.Name != "Zzzzzz" || res.Method != MethodNone {
		t.Fatalf("expected cleaned raw text, got %+v", res)
	}
}

func TestResolve_FallsBackToSecondKind(t *testing.T) {
	r := newTestResolver(t)
	res := r.Resolve("Fire Elementa1", KindsFor(PvE, combat.Ally))
	if !res.Accepted || res.Name != "Fire Elemental" || res.Kind != Minion {
		t.Fatalf("expected minion match, got %+v", res)
	}
}

func TestResolve_Cached(t *testing.T) {
	r := newTestResolver(t)
	a := r.Resolve("Stormm", []Kind{Monster})
	b := r.Resolve("Stormm", []Kind{Monster})
	if a != b {
		t.Fatalf("expected identical cached result")
	}
	if r.cache.Len() != 1 {
		t.Fatalf("expected one cache entry, got %d", r.cache.Len())
	}
}

func TestLoadDictionary_DirectoryAndComments(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("# bosses\nStorm\n\nRattlebones\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("Imp\nstorm\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDictionary(Monster, dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	words := d.Words()
	if len(words) != 3 || words[0] != "Storm" || words[2] != "Imp" {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestStore_MissingPathYieldsEmpty(t *testing.T) {
	s := NewStore(map[Kind]string{Wizard: filepath.Join(t.TempDir(), "missing.txt")}, nil)
	if d := s.Get(Wizard); d.Len() != 0 {
		t.Fatalf("expected empty dictionary")
	}
}

func TestConfusionCandidates(t *testing.T) {
	got := confusionCandidates("1MP", 10)
	want := map[string]bool{"IMP": false, "LMP": false, "1RNP": false}
	for _, g := range got {
		if _, ok := want[g]; ok {
			want[g] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Fatalf("expected candidate %q in %v", k, got)
		}
	}
	if len(confusionCandidates("1MP", 1)) != 1 {
		t.Fatalf("expected limit to cap candidates")
	}
}
