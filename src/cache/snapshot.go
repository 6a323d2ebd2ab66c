package cache

type companyVolume struct {
	buy  uint64
	sell uint64
}

func (c *companyVolume) combined() uint64 {
	return c.buy + c.sell
}

// securitySnapshot aggregates the live orders of one security.
// totalBuy and totalSell always equal the sums of the company volumes, and
// volumes holds one item per company with a non-zero combined volume.
type securitySnapshot struct {
	totalBuy  uint64
	totalSell uint64
	companies map[string]*companyVolume
	volumes   *volumeTree
}

func newSecuritySnapshot() *securitySnapshot {
	return &securitySnapshot{
		companies: make(map[string]*companyVolume),
		volumes:   newVolumeTree(),
	}
}

func (s *securitySnapshot) onAdd(order Order) {
	cv, exists := s.companies[order.company]
	if !exists {
		cv = &companyVolume{}
		s.companies[order.company] = cv
	}
	s.volumes.remove(order.company, cv.combined())

	qty := uint64(order.qty)
	if order.isBuy() {
		cv.buy += qty
		s.totalBuy += qty
	} else {
		cv.sell += qty
		s.totalSell += qty
	}

	s.volumes.insert(order.company, cv.combined())
}

func (s *securitySnapshot) onRemove(order Order) {
	cv, exists := s.companies[order.company]
	if !exists {
		return
	}
	s.volumes.remove(order.company, cv.combined())

	qty := uint64(order.qty)
	if order.isBuy() {
		cv.buy -= qty
		s.totalBuy -= qty
	} else {
		cv.sell -= qty
		s.totalSell -= qty
	}

	if cv.combined() == 0 {
		delete(s.companies, order.company)
		return
	}
	s.volumes.insert(order.company, cv.combined())
}

func (s *securitySnapshot) maxCompanyVolume() uint64 {
	return s.volumes.max()
}

func (s *securitySnapshot) empty() bool {
	return s.totalBuy == 0 && s.totalSell == 0
}

// matchingSize derives the matchable quantity from the aggregates. Only the
// largest company is excluded from matching against itself.
func (s *securitySnapshot) matchingSize() uint64 {
	if s.totalBuy == 0 || s.totalSell == 0 {
		return 0
	}

	b := int64(s.totalBuy)
	sell := int64(s.totalSell)
	v := int64(s.maxCompanyVolume())

	exBuy := max(0, v-sell)
	exSell := max(0, v-b)

	matchBuy := max(0, b-exBuy)
	matchSell := max(0, sell-exSell)
	return uint64(min(matchBuy, matchSell))
}

type CompanyVolume struct {
	Buy  uint64
	Sell uint64
}

// SecuritySnapshot is a point-in-time copy of a security's aggregates.
type SecuritySnapshot struct {
	SecurityID       string
	TotalBuy         uint64
	TotalSell        uint64
	MaxCompanyVolume uint64
	Companies        map[string]CompanyVolume
}

func (s *securitySnapshot) export(securityID string) SecuritySnapshot {
	companies := make(map[string]CompanyVolume, len(s.companies))
	for name, cv := range s.companies {
		companies[name] = CompanyVolume{Buy: cv.buy, Sell: cv.sell}
	}
	return SecuritySnapshot{
		SecurityID:       securityID,
		TotalBuy:         s.totalBuy,
		TotalSell:        s.totalSell,
		MaxCompanyVolume: s.maxCompanyVolume(),
		Companies:        companies,
	}
}
