package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/tokenizer"
)

var sampleTexts = map[string]string{
	"short": "Tactile maps for people with visual impairments",
	"medium": `Screen readers convert on-screen text to synthetic speech or braille output.
        We conducted a study with twelve blind participants (BP) who used a refreshable
        braille display alongside audio feedback. Participants completed navigation tasks
        faster with haptic cues than with audio alone. Copyright 2019 ACM.`,
	"long": strings.Repeat(`Assistive technology supports people with low vision in everyday
        tasks. Magnification software, high-contrast themes and tactile graphics make
        digital content accessible. We report on the design of an audio-tactile map and
        evaluate it with visually impaired users in a controlled laboratory study. `, 20),
}

func taggers() map[string]tokenizer.Tagger {
	return map[string]tokenizer.Tagger{
		"rules": tokenizer.NewRuleTagger(),
		"prose": tokenizer.NewProseTagger(),
	}
}

func BenchmarkTokenize(b *testing.B) {
	ctx := context.Background()
	for tname, tagger := range taggers() {
		tok := tokenizer.New(tagger)
		for name, text := range sampleTexts {
			b.Run(tname+"/"+name, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(text)))
				for i := 0; i < b.N; i++ {
					if _, err := tok.Tokenize(ctx, text); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	tok := tokenizer.New(tokenizer.NewRuleTagger())
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			_, _ = tok.Tokenize(ctx, text)
		}
	})
}

func BenchmarkKeywordTokens(b *testing.B) {
	keywords := "Accessibility; Blind users; Screen-readers; Braille (tactile); Audio games; Low vision."
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = tokenizer.KeywordTokens(keywords)
	}
}

func BenchmarkRemoveSponsor(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	base := "we evaluate tactile graphics with blind participants in a laboratory study "
	for _, size := range sizes {
		text := strings.Repeat(base, size/len(base)+1)[:size] + " Copyright 2018 IEEE."
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = tokenizer.RemoveSponsor(text)
			}
		})
	}
}
