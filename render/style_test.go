package render

import "testing"

func TestDefaultStyleWeightAndSlant(t *testing.T) {
	native := DefaultNativeStyle()
	if !native.Bold || native.Italic {
		t.Fatalf("native style = %+v; want bold and upright", native)
	}
	translated := DefaultTranslatedStyle()
	if translated.Bold || !translated.Italic {
		t.Fatalf("translated style = %+v; want italic and regular weight", translated)
	}
}

func TestFontVariantPick(t *testing.T) {
	arial := familyFonts[FontArial]
	if arial.pick(true, false) != arial.bold {
		t.Fatal("bold request did not pick the bold face")
	}
	if arial.pick(false, true) != arial.italic {
		t.Fatal("italic request did not pick the italic face")
	}
	if arial.pick(true, true) != arial.boldItalic {
		t.Fatal("bold italic request did not pick the bold italic face")
	}
	if arial.pick(false, false) != arial.regular {
		t.Fatal("plain request did not pick the regular face")
	}

	// Families without a bundled variant fall back toward regular.
	verdana := familyFonts[FontVerdana]
	if verdana.pick(true, false) != verdana.regular {
		t.Fatal("missing bold variant should fall back to regular")
	}
	if verdana.pick(true, true) != verdana.italic {
		t.Fatal("missing bold italic should fall back to italic")
	}
	times := familyFonts[FontTimes]
	if times.pick(true, true) != times.regular {
		t.Fatal("family with only a regular face should always use it")
	}
}

func TestNewFaceAllFamiliesAndVariants(t *testing.T) {
	families := []FontFamily{FontArial, FontVerdana, FontGeorgia, FontTimes, FontCourierNew}
	for _, fam := range families {
		for _, bold := range []bool{false, true} {
			for _, italic := range []bool{false, true} {
				if _, err := newFace(fam, bold, italic, 28); err != nil {
					t.Fatalf("newFace(%q, bold=%v, italic=%v): %v", fam, bold, italic, err)
				}
			}
		}
	}
	if _, err := newFace("Comic Sans", false, false, 28); err == nil {
		t.Fatal("unknown family accepted")
	}
}
