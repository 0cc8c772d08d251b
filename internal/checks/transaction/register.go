package transaction

import "fraudlens/internal/checks"

// RegisterAll registers every transaction check into the registry.
func RegisterAll(r *checks.Registry) {
	r.MustRegister(VelocityTool())
	r.MustRegister(TimeDayTool())
	r.MustRegister(AmountTool())
	r.MustRegister(TicketSizeTool())
	r.MustRegister(PatternsTool())
	r.MustRegister(MerchantHistoryTool())
	r.MustRegister(RiskyMerchantTool())
	r.MustRegister(RiskyCountryTool())
	r.MustRegister(FirstAlertTool())
	r.MustRegister(PINVerifiedTool())
	r.MustRegister(CardPresentTool())
	r.MustRegister(CardNotPresentTool())
	r.MustRegister(ContactlessTool())
	r.MustRegister(MagStripeTool())
	r.MustRegister(TokenNFCTool())
	r.MustRegister(GeoLocationTool())
}

// NewRegistry returns a registry with every transaction check registered.
func NewRegistry() *checks.Registry {
	r := checks.NewRegistry()
	RegisterAll(r)
	return r
}
