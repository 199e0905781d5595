package xl

// NumberFormat is one of the built-in number format ids of SpreadsheetML.
// The zero value leaves the number format unset.
type NumberFormat int

const (
	FormatNone                                    NumberFormat = 0
	FormatNumber                                  NumberFormat = 1  // 0
	FormatNumberWithDecimal                       NumberFormat = 2  // 0.00
	FormatNumberWithComma                         NumberFormat = 3  // #,##0
	FormatNumberWithCommaAndDecimal               NumberFormat = 4  // #,##0.00
	FormatCurrencyWithCommaAndNegativeRed         NumberFormat = 6  // $#,##0;[Red]-$#,##0
	FormatCurrencyWithCommaAndDecimalAndNegRed    NumberFormat = 8  // $#,##0.00;[Red]-$#,##0.00
	FormatPercentage                              NumberFormat = 9  // 0%
	FormatPercentageAndDecimal                    NumberFormat = 10 // 0.00%
	FormatScientific                              NumberFormat = 11 // 0.00E+00
	FormatFraction                                NumberFormat = 12 // # ?/?
	FormatFractionWithTwoDigits                   NumberFormat = 13 // # ??/??
	FormatDate                                    NumberFormat = 14 // m/d/yyyy
	FormatDayMonthYear                            NumberFormat = 15 // d-mmm-yy
	FormatDayMonth                                NumberFormat = 16 // d-mmm
	FormatMonthYear                               NumberFormat = 17 // mmm-yy
	FormatHourMinutePeriod                        NumberFormat = 18 // h:mm AM/PM
	FormatHourMinuteSecondPeriod                  NumberFormat = 19 // h:mm:ss AM/PM
	FormatTime                                    NumberFormat = 20 // h:mm
	FormatTimeWithSeconds                         NumberFormat = 21 // h:mm:ss
	FormatDateTime                                NumberFormat = 22 // m/d/yyyy h:mm
	FormatNumberWithCommaAndNegativeRed           NumberFormat = 38 // #,##0;[Red]-#,##0
	FormatNumberWithCommaAndDecimalAndNegativeRed NumberFormat = 40 // #,##0.00;[Red]-#,##0.00
	FormatTimeSpan                                NumberFormat = 45 // mm:ss
	FormatTimeSpanWithHours                       NumberFormat = 46 // [h]:mm:ss
	FormatTimeSpanWithDecimal                     NumberFormat = 47 // mm:ss.0
	FormatText                                    NumberFormat = 49 // @
)

var formatCodes = map[NumberFormat]string{
	FormatNumber:                                  "0",
	FormatNumberWithDecimal:                       "0.00",
	FormatNumberWithComma:                         "#,##0",
	FormatNumberWithCommaAndDecimal:               "#,##0.00",
	FormatCurrencyWithCommaAndNegativeRed:         "$#,##0;[Red]-$#,##0",
	FormatCurrencyWithCommaAndDecimalAndNegRed:    "$#,##0.00;[Red]-$#,##0.00",
	FormatPercentage:                              "0%",
	FormatPercentageAndDecimal:                    "0.00%",
	FormatScientific:                              "0.00E+00",
	FormatFraction:                                "# ?/?",
	FormatFractionWithTwoDigits:                   "# ??/??",
	FormatDate:                                    "m/d/yyyy",
	FormatDayMonthYear:                            "d-mmm-yy",
	FormatDayMonth:                                "d-mmm",
	FormatMonthYear:                               "mmm-yy",
	FormatHourMinutePeriod:                        "h:mm AM/PM",
	FormatHourMinuteSecondPeriod:                  "h:mm:ss AM/PM",
	FormatTime:                                    "h:mm",
	FormatTimeWithSeconds:                         "h:mm:ss",
	FormatDateTime:                                "m/d/yyyy h:mm",
	FormatNumberWithCommaAndNegativeRed:           "#,##0;[Red]-#,##0",
	FormatNumberWithCommaAndDecimalAndNegativeRed: "#,##0.00;[Red]-#,##0.00",
	FormatTimeSpan:                                "mm:ss",
	FormatTimeSpanWithHours:                       "[h]:mm:ss",
	FormatTimeSpanWithDecimal:                     "mm:ss.0",
	FormatText:                                    "@",
}

// Code returns the format code a reader applies for f, or "" when f is not
// one of the known built-in formats.
func (f NumberFormat) Code() string {
	return formatCodes[f]
}
