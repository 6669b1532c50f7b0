package catalog

func builtinDefinitions() []definition {
	return []definition{
		{
			category: Length,
			label:    "Length",
			kind:     KindLinear,
			units: []Unit{
				{ID: "meter", Label: "Meters (m)", Factor: 1},
				{ID: "kilometer", Label: "Kilometers (km)", Factor: 0.001},
				{ID: "centimeter", Label: "Centimeters (cm)", Factor: 100},
				{ID: "millimeter", Label: "Millimeters (mm)", Factor: 1000},
				{ID: "inch", Label: "Inches (in)", Factor: 39.3701},
				{ID: "foot", Label: "Feet (ft)", Factor: 3.28084},
				{ID: "yard", Label: "Yards (yd)", Factor: 1.09361},
				{ID: "mile", Label: "Miles (mi)", Factor: 0.000621371},
			},
		},
		{
			category: Weight,
			label:    "Weight",
			kind:     KindLinear,
			units: []Unit{
				{ID: "kilogram", Label: "Kilograms (kg)", Factor: 1},
				{ID: "gram", Label: "Grams (g)", Factor: 1000},
				{ID: "milligram", Label: "Milligrams (mg)", Factor: 1000000},
				{ID: "pound", Label: "Pounds (lb)", Factor: 2.20462},
				{ID: "ounce", Label: "Ounces (oz)", Factor: 35.274},
				{ID: "ton", Label: "Tons (t)", Factor: 0.001},
			},
		},
		{
			category: Temperature,
			label:    "Temperature",
			kind:     KindAffine,
			units: []Unit{
				{ID: "celsius", Label: "Celsius (°C)"},
				{ID: "fahrenheit", Label: "Fahrenheit (°F)"},
				{ID: "kelvin", Label: "Kelvin (K)"},
			},
			pairs: temperaturePairs(),
		},
		{
			category: Volume,
			label:    "Volume",
			kind:     KindLinear,
			units: []Unit{
				{ID: "liter", Label: "Liters (L)", Factor: 1},
				{ID: "milliliter", Label: "Milliliters (mL)", Factor: 1000},
				{ID: "gallon", Label: "Gallons (gal)", Factor: 0.264172},
				{ID: "quart", Label: "Quarts (qt)", Factor: 1.05669},
				{ID: "pint", Label: "Pints (pt)", Factor: 2.11338},
				{ID: "cup", Label: "Cups (cup)", Factor: 4.22675},
				{ID: "fluid_ounce", Label: "Fluid Ounces (fl oz)", Factor: 33.814},
			},
		},
		{
			category: Speed,
			label:    "Speed",
			kind:     KindLinear,
			units: []Unit{
				{ID: "meter_per_second", Label: "Meters per second (m/s)", Factor: 1},
				{ID: "kilometer_per_hour", Label: "Kilometers per hour (km/h)", Factor: 3.6},
				{ID: "mile_per_hour", Label: "Miles per hour (mph)", Factor: 2.23694},
				{ID: "knot", Label: "Knots (kn)", Factor: 1.94384},
			},
		},
		{
			category: Area,
			label:    "Area",
			kind:     KindLinear,
			units: []Unit{
				{ID: "square_meter", Label: "Square meters (m²)", Factor: 1},
				{ID: "square_kilometer", Label: "Square kilometers (km²)", Factor: 0.000001},
				{ID: "square_centimeter", Label: "Square centimeters (cm²)", Factor: 10000},
				{ID: "hectare", Label: "Hectares (ha)", Factor: 0.0001},
				{ID: "acre", Label: "Acres (ac)", Factor: 0.000247105},
				{ID: "square_foot", Label: "Square feet (ft²)", Factor: 10.7639},
				{ID: "square_inch", Label: "Square inches (in²)", Factor: 1550.0031},
				{ID: "square_mile", Label: "Square miles (mi²)", Factor: 0.000000386102},
			},
		},
		{
			category: Time,
			label:    "Time",
			kind:     KindLinear,
			units: []Unit{
				{ID: "second", Label: "Seconds (s)", Factor: 1},
				{ID: "millisecond", Label: "Milliseconds (ms)", Factor: 1000},
				{ID: "minute", Label: "Minutes (min)", Factor: 1.0 / 60},
				{ID: "hour", Label: "Hours (h)", Factor: 1.0 / 3600},
				{ID: "day", Label: "Days (d)", Factor: 1.0 / 86400},
				{ID: "week", Label: "Weeks (wk)", Factor: 1.0 / 604800},
			},
		},
	}
}

// fallbackDefinition is served for categories the catalog does not know.
func fallbackDefinition() definition {
	return definition{
		category: "fallback",
		label:    "Fallback",
		kind:     KindLinear,
		units: []Unit{
			{ID: "meter", Label: "Meters (m)", Factor: 1},
			{ID: "kilometer", Label: "Kilometers (km)", Factor: 0.001},
		},
	}
}
