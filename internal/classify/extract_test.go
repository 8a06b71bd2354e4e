package classify

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractCost", func() {
	var (
		text  string
		value float64
		found bool
	)

	JustBeforeEach(func() {
		value, found = ExtractCost(text)
	})

	When("the text contains a labeled electricity price", func() {
		BeforeEach(func() {
			text = "Prezzo energia F1 0,1234 €/kWh"
		})

		It("should find a value", func() {
			Expect(found).To(BeTrue())
		})

		It("should normalize the decimal comma", func() {
			Expect(value).To(BeNumerically("~", 0.1234, 1e-9))
		})
	})

	When("the text contains a labeled gas price", func() {
		BeforeEach(func() {
			text = "Corrispettivo gas 0,95 €/Smc per il periodo"
		})

		It("should find the value", func() {
			Expect(found).To(BeTrue())
			Expect(value).To(BeNumerically("~", 0.95, 1e-9))
		})
	})

	When("a labeled price follows a large consumption figure", func() {
		BeforeEach(func() {
			text = "Consumo del periodo 450 kWh\nPrezzo energia 0,25 €/kWh"
		})

		It("should prefer the labeled price over the earlier bare numeral", func() {
			Expect(found).To(BeTrue())
			Expect(value).To(BeNumerically("~", 0.25, 1e-9))
		})
	})

	When("only a bare numeral with a unit is present", func() {
		BeforeEach(func() {
			text = "consumo gas: 120 Smc"
		})

		It("should fall through to the least specific pattern", func() {
			Expect(found).To(BeTrue())
			Expect(value).To(BeNumerically("~", 120, 1e-9))
		})
	})

	When("the only candidate value is out of range", func() {
		BeforeEach(func() {
			text = "Consumo annuo 1500 kWh"
		})

		It("should find nothing", func() {
			Expect(found).To(BeFalse())
		})
	})

	When("an out-of-range bare numeral precedes an in-range currency match", func() {
		BeforeEach(func() {
			text = "Totale 2500 kWh oppure 0,18 €/kWh"
		})

		It("should accept the first in-range value", func() {
			Expect(found).To(BeTrue())
			Expect(value).To(BeNumerically("~", 0.18, 1e-9))
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should find nothing without error", func() {
			Expect(found).To(BeFalse())
			Expect(value).To(BeZero())
		})
	})

	When("the text has no numerals near units", func() {
		BeforeEach(func() {
			text = "Gentile cliente, il suo contratto gas è attivo dal mese scorso."
		})

		It("should find nothing", func() {
			Expect(found).To(BeFalse())
		})
	})

	Describe("idempotence", func() {
		It("should return the same value on repeated runs", func() {
			input := "Prezzo energia F1 0,1234 €/kWh e consumo 450 kWh"
			v1, ok1 := ExtractCost(input)
			v2, ok2 := ExtractCost(input)
			Expect(ok1).To(Equal(ok2))
			Expect(v1).To(Equal(v2))
		})
	})

	Describe("range bound", func() {
		It("should never return a value outside (0, 1000)", func() {
			inputs := []string{
				"0 €/kWh",
				"1000,00 €/kWh",
				"999,99 €/kWh",
				"0,0001 €/kWh",
				"12345 kWh",
			}
			for _, in := range inputs {
				v, ok := ExtractCost(in)
				if ok {
					Expect(v).To(BeNumerically(">", 0))
					Expect(v).To(BeNumerically("<", 1000))
				}
			}
		})
	})
})
