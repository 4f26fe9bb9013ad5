package agent

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/recommend"
	"github.com/ashureev/skinmatch/internal/textnorm"
)

const (
	replyReset            = "Siap ✨ semua data sudah aku reset. Kita mulai dari awal ya 😊"
	replyAskCategory      = "Kamu mau cari produk kategori apa? 😊\nPilihan: Facial Wash, Toner, Serum, Moisturizer, atau Sunscreen."
	replyAskCategoryFirst = "Kamu mau produk kategori apa dulu? 😊"
	replyExhausted        = "Produk sudah habis ditampilkan 😊 Kamu mau ganti kategori atau kriteria?"
	replyNeedTwo          = "Sebutkan minimal dua kandungan ya 😊"
	replyUnknownPair      = "Kombinasi ini belum ada di dataku, tapi amannya sebaiknya dipakai bergantian (pagi/malam) ya 😊"
	replyAskIngredient    = "Boleh sebutkan nama kandungannya lebih spesifik? 😊"
	replyAskProductName   = "Boleh tahu nama produk lengkapnya? 😊"
	replyAskInfoTarget    = "Boleh tahu nama produk atau kandungan apa yang ingin kamu tanyakan manfaatnya? 😊"
	replyFallback         = "Aku siap bantu ✨\nKamu bisa sebutin jenis kulit, masalah kulit, atau tanya fungsi kandungan skincare kamu 😊"

	morningRoutine = "Urutan skincare pagi ☀️\n1. Facial Wash\n2. Toner\n3. Serum\n4. Moisturizer\n5. Sunscreen"
	eveningRoutine = "Urutan skincare malam 🌙\n1. Facial Wash\n2. Toner\n3. Serum\n4. Moisturizer\n\n💡 Malam hari tidak perlu sunscreen ya 😊"
	routineDivider = "\n\n---\n\n"

	moreHint     = "\nKetik **'produk lainnya'** atau **'yang lain'** untuk melihat rekomendasi berikutnya 😊"
	categoryHint = "\nKalau mau lanjut ke kategori lain seperti facial wash, toner, serum, moisturizer atau sunscreen, tinggal bilang aja ya 😊"

	defaultProductBenefit = "merawat kulit"
)

func gibberishReply(raw string) string {
	return fmt.Sprintf("Maaf, aku kurang paham maksud dari '**%s**' 😅\n"+
		"Coba ketik dengan ejaan yang benar ya, misalnya: 'Retinol', 'Niacinamide', atau 'Serum'.", strings.TrimSpace(raw))
}

func askSkinTypeReply(targets []string) string {
	target := "skincare"
	if len(targets) > 0 {
		target = strings.Join(targets, " & ")
	}
	return fmt.Sprintf("Oke, aku bantu cari **%s** yang pas ya 🔍\n"+
		"Tapi aku perlu tahu dulu, jenis kulit kamu: **Normal, Berminyak, Kering, Kombinasi, atau Sensitif**? ✨", target)
}

func askProblemsReply(opening string, skin []string) string {
	return fmt.Sprintf("%s Oke, aku catat kulit kamu %s 🌿\n\n"+
		"Supaya rekomendasinya lebih akurat, kamu punya masalah kulit apa?\n"+
		"Contoh: jerawat, bruntusan, kusam, flek.\n\n"+
		"Kamu juga bisa sekalian bilang mau cari produk apa "+
		"(facial wash, toner, serum, moisturizer, atau sunscreen) 😊", opening, strings.Join(skin, " dan "))
}

func categoriesWithReply(ingredients, labels []string) string {
	return fmt.Sprintf("Aku nemu produk dengan kandungan **%s** dalam bentuk **%s**. \n\nKamu mau cari yang mana? 😊",
		strings.Join(ingredients, ", "), strings.Join(labels, ", "))
}

func lexiconCategoriesReply(display string, labels []string) string {
	return fmt.Sprintf("**%s** biasanya tersedia dalam bentuk: **%s**.\n\nKamu lagi cari %s dalam kategori apa? 😊",
		display, strings.Join(labels, ", "), display)
}

func (e *Engine) notFoundReply(category, brand string) string {
	cat := strings.ToLower(e.lx.CategoryLabel(category))
	if brand != "" {
		return fmt.Sprintf("Aku belum menemukan produk %s dari brand %s dengan kriteria ini di dataset 😔", cat, capitalize(brand))
	}
	return fmt.Sprintf("Aku belum menemukan produk %s yang sesuai dengan kriteria ini di dataset 😔", cat)
}

// listContext carries what the recommendation list reply mentions.
type listContext struct {
	opening     string
	category    string
	skinTypes   []string
	problems    []string // after category-specific drops
	displays    []string
	rawProblems []string
	ingredients []string
	items       []recommend.Recommendation
}

func (e *Engine) listReply(c listContext) string {
	skin := "kamu"
	if len(c.skinTypes) > 0 {
		skin = strings.Join(c.skinTypes, " dan ")
	}

	var b strings.Builder
	b.WriteString(c.opening)
	b.WriteString(" Untuk kulit ")
	b.WriteString(skin)
	if len(c.ingredients) > 0 {
		b.WriteString(" dengan kandungan **")
		b.WriteString(strings.Join(c.ingredients, ", "))
		b.WriteString("**")
	}
	b.WriteString(".\n")

	shown := c.displays
	if len(shown) == 0 {
		for _, p := range c.rawProblems {
			shown = append(shown, strings.ReplaceAll(p, "_", " "))
		}
	}
	if shown = uniqueStrings(shown); len(shown) > 0 {
		fmt.Fprintf(&b, " Dengan masalah %s, %s\n\n", joinAnd(shown), e.strategy(c.category, c.skinTypes, c.problems))
	}

	fmt.Fprintf(&b, "Rekomendasi %s yang cocok:\n", e.lx.CategoryLabel(c.category))
	var listed []string
	for _, item := range c.items {
		full := strings.TrimSpace(item.Brand) + " " + strings.TrimSpace(item.Name)
		if slices.Contains(listed, full) {
			continue
		}
		listed = append(listed, full)
		fmt.Fprintf(&b, "- **%s**\n", full)
	}
	b.WriteString(moreHint)
	b.WriteString(categoryHint)
	return b.String()
}

// strategy narrates how the list was chosen: skin type phrases first, then
// the category rules whose problems the user mentioned.
func (e *Engine) strategy(category string, skinTypes, problems []string) string {
	var parts []string
	add := func(p string) {
		if p != "" && !slices.Contains(parts, p) {
			parts = append(parts, p)
		}
	}
	for _, tag := range skinTypes {
		add(e.lx.SkinStrategy(tag))
	}
	if c, ok := e.lx.Category(category); ok {
		for _, rule := range c.Strategy {
			if len(rule.WhenProblems) == 0 || intersects(rule.WhenProblems, problems) {
				add(rule.Phrase)
			}
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return "aku pilihkan produk yang " + parts[0] + ". "
	default:
		last := len(parts) - 1
		return "aku pilihkan produk yang " + strings.Join(parts[:last], ", ") + " serta " + parts[last] + ". "
	}
}

// interactionReply answers for the first two ingredients. The lookup does
// not depend on their order.
func (e *Engine) interactionReply(ingredients []string, full bool) string {
	if len(ingredients) < 2 {
		return replyNeedTwo
	}
	a, b := ingredients[0], ingredients[1]
	info, ok := e.lx.Interaction(a, b)
	if !ok {
		return replyUnknownPair
	}
	if b < a {
		a, b = b, a
	}
	out := fmt.Sprintf("✨ **Kombinasi: %s + %s** ✨\n⚠️ **Status:** %s", a, b, info.Safety)
	if !full {
		return out
	}
	return out + fmt.Sprintf("\n💡 **Fungsi:** %s\n📅 **Cara Pakai:** %s\n🚫 **Peringatan:** %s",
		info.Function, info.Usage, info.Warning)
}

func (e *Engine) safetyReply(ingredients []string) string {
	lines := make([]string, 0, len(ingredients))
	for _, name := range ingredients {
		ing, ok := e.lx.Ingredient(name)
		verdict := lexicon.VerdictUnknown
		if ok {
			verdict = ing.Info.SensitiveVerdict
		}
		var line string
		switch verdict {
		case lexicon.VerdictSafe:
			line = fmt.Sprintf("**%s** relatif aman untuk kulit sensitif 🌱", name)
		case lexicon.VerdictAvoid:
			line = fmt.Sprintf("**%s** sebaiknya dihindari untuk kulit sensitif ⚠️", name)
		default:
			lines = append(lines, fmt.Sprintf("Data keamanan **%s** belum lengkap.", name))
			continue
		}
		if note := ing.Info.SensitiveNote; note != "" {
			line += " " + note
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) ingredientInfoReply(name string) string {
	if name == "" {
		return replyAskIngredient
	}
	ing, ok := e.lx.Ingredient(name)
	if !ok || ing.Info.Function == "" {
		return fmt.Sprintf("Aku belum punya info detail tentang **%s**.", name)
	}
	return fmt.Sprintf("**%s** adalah kandungan yang multifungsi ✨\n\n**Manfaat utamanya:** %s\n**Cocok untuk:** %s",
		displayName(ing), ing.Info.Function, ing.Info.SuitableFor)
}

func routineReply(clean string) string {
	morning := textnorm.ContainsAny(clean, morningWords)
	evening := textnorm.ContainsAny(clean, eveningWords)
	switch {
	case morning && evening:
		return morningRoutine + routineDivider + eveningRoutine
	case evening:
		return eveningRoutine
	case morning:
		return morningRoutine
	default:
		return "Kamu mau tahu urutan yang mana? 😊\n\n" + morningRoutine + routineDivider + eveningRoutine
	}
}

func educationalReply(p domain.Product, benefits []string) string {
	if len(benefits) > 0 {
		return fmt.Sprintf("Manfaat utama dari **%s** adalah untuk %s ✨", p.FullName(), strings.Join(benefits, ", "))
	}
	benefit := strings.TrimSpace(p.Benefit)
	if benefit == "" {
		benefit = defaultProductBenefit
	}
	return fmt.Sprintf("Manfaat utama dari **%s** adalah %s ✨", p.FullName(), strings.ToLower(benefit))
}

func brandProductsReply(brand string, names []string) string {
	return fmt.Sprintf("Berikut beberapa produk dari **%s**:\n- **%s**", capitalize(brand), strings.Join(names, "**\n- **"))
}

// opening picks the greeting variant for this turn. The choice depends only
// on the session seed and the message, so a replayed turn reads the same.
func (e *Engine) opening(s *domain.Session, clean string) string {
	variants := e.lx.OpeningVariants
	if len(variants) == 0 {
		return ""
	}
	h := fnv.New64a()
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], s.Seed)
	_, _ = h.Write(seed[:])
	_, _ = h.Write([]byte(clean))
	return variants[h.Sum64()%uint64(len(variants))]
}

func displayName(ing lexicon.Ingredient) string {
	if ing.Info.Display != "" {
		return ing.Info.Display
	}
	return ing.Name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// joinAnd renders "a", "a dan b" or "a, b dan c".
func joinAnd(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	last := len(items) - 1
	return strings.Join(items[:last], ", ") + " dan " + items[last]
}

func uniqueStrings(in []string) []string {
	var out []string
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}
