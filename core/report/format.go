package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/divan/num2words"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const unavailable = "—"

var printer = message.NewPrinter(language.English)

// formatAverage always shows one decimal: 80 -> "80.0".
func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatAveragePtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatAverage(*v)
}

type moneyFormatter struct {
	currency string
}

// format groups thousands: 1234.5 -> "US$ 1,234.50".
func (mf moneyFormatter) format(amount float64) string {
	s := printer.Sprintf("%.2f", amount)
	if mf.currency == "" {
		return s
	}
	return mf.currency + " " + s
}

// words spells amount out, cents as a fraction: 1200.5 -> "One thousand two hundred and 50/100".
func (mf moneyFormatter) words(amount float64) string {
	amount = math.Abs(amount)
	whole := int(amount)
	cents := int(math.Round((amount - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	w := num2words.Convert(whole)
	if w != "" {
		w = strings.ToUpper(w[:1]) + w[1:]
	}
	return fmt.Sprintf("%s and %02d/100", w, cents)
}
