package ocr

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Normalize", func() {
	It("should unify line endings", func() {
		Expect(Normalize("riga uno\r\nriga due")).To(Equal("riga uno\nriga due"))
	})

	It("should strip table border noise", func() {
		Expect(Normalize("consumo gas ||||| 120 Smc")).To(Equal("consumo gas 120 Smc"))
		Expect(Normalize("totale ======== 42")).To(Equal("totale 42"))
	})

	It("should collapse runs of spaces", func() {
		Expect(Normalize("prezzo      0,25 €/kWh")).To(Equal("prezzo 0,25 €/kWh"))
	})

	It("should replace non-breaking spaces", func() {
		Expect(Normalize("120 Smc")).To(Equal("120 Smc"))
	})

	It("should collapse blank-line runs but keep paragraph breaks", func() {
		Expect(Normalize("sezione gas\n\n\n\nsezione luce")).To(Equal("sezione gas\n\nsezione luce"))
		Expect(Normalize("sezione gas\n\nsezione luce")).To(Equal("sezione gas\n\nsezione luce"))
	})

	It("should trim surrounding whitespace", func() {
		Expect(Normalize("  \n testo \n  ")).To(Equal("testo"))
	})

	It("should return empty for whitespace-only input", func() {
		Expect(Normalize(" \n\t \n")).To(BeEmpty())
	})
})
