package core

import (
	"context"
	"fmt"
	"time"

	"rentcore/pkg/domain"
)

// SeedSampleData populates the store with a realistic Nairobi rental
// portfolio: three landlords, four tenants, three properties with their
// units, plus applications, active leases, payment history, maintenance
// tickets, and messages. Intended for demos and local development.
func (s *Service) SeedSampleData(ctx context.Context) WorkflowResult {
	return s.RunWorkflow(ctx, Workflow{
		Name: "seed_sample_data",
		Steps: []WorkflowStep{
			{Name: "create_landlords", Run: seedLandlords},
			{Name: "create_tenants", Run: seedTenants},
			{Name: "create_properties", Run: seedProperties},
			{Name: "create_units", Run: seedUnits},
			{Name: "submit_applications", Run: seedApplications},
			{Name: "create_leases", Run: seedLeases},
			{Name: "record_payments", Run: seedPayments},
			{Name: "open_maintenance_requests", Run: seedMaintenance},
			{Name: "send_messages", Run: seedMessages},
		},
	})
}

func seedUser(ctx context.Context, state *WorkflowState, key string, user User) error {
	created, _, err := state.svc.CreateUser(ctx, user)
	if err != nil {
		return err
	}
	state.Set(key, created.ID)
	state.Record(domain.EntityUser, created.ID)
	return nil
}

func seedLandlords(ctx context.Context, state *WorkflowState) error {
	landlords := []struct {
		key  string
		user User
	}{
		{"landlord1", User{Email: "peter.kamau@gmail.com", FirstName: "Peter", LastName: "Kamau", Phone: "+254 722 456 789", Role: domain.RoleLandlord}},
		{"landlord2", User{Email: "mary.wanjiku@gmail.com", FirstName: "Mary", LastName: "Wanjiku", Phone: "+254 733 567 890", Role: domain.RoleLandlord}},
		{"landlord3", User{Email: "james.muriuki@gmail.com", FirstName: "James", LastName: "Muriuki", Phone: "+254 711 234 567", Role: domain.RoleLandlord}},
	}
	for _, l := range landlords {
		if err := seedUser(ctx, state, l.key, l.user); err != nil {
			return err
		}
	}
	return nil
}

func seedTenants(ctx context.Context, state *WorkflowState) error {
	tenants := []struct {
		key  string
		user User
	}{
		{"tenant1", User{Email: "john.ochieng@gmail.com", FirstName: "John", LastName: "Ochieng", Phone: "+254 744 678 901", Role: domain.RoleTenant}},
		{"tenant2", User{Email: "grace.akinyi@gmail.com", FirstName: "Grace", LastName: "Akinyi", Phone: "+254 755 789 012", Role: domain.RoleTenant}},
		{"tenant3", User{Email: "david.njoroge@gmail.com", FirstName: "David", LastName: "Njoroge", Phone: "+254 766 890 123", Role: domain.RoleTenant}},
		{"tenant4", User{Email: "susan.mutua@gmail.com", FirstName: "Susan", LastName: "Mutua", Phone: "+254 777 901 234", Role: domain.RoleTenant}},
	}
	for _, t := range tenants {
		if err := seedUser(ctx, state, t.key, t.user); err != nil {
			return err
		}
	}
	return nil
}

func seedProperties(ctx context.Context, state *WorkflowState) error {
	properties := []struct {
		key      string
		landlord string
		property Property
	}{
		{"prop1", "landlord1", Property{
			Name:        "Kilimani Heights",
			Address:     "123 Argwings Kodhek Road",
			City:        "Nairobi",
			County:      "Nairobi",
			Description: "Modern apartment complex in the heart of Kilimani with excellent amenities and security.",
			TotalUnits:  24,
			Amenities:   []string{"Swimming Pool", "Gym", "24/7 Security", "Parking", "Backup Generator", "High-Speed Internet", "Solar Water Heating"},
		}},
		{"prop2", "landlord2", Property{
			Name:        "Westlands Gardens",
			Address:     "456 Waiyaki Way",
			City:        "Nairobi",
			County:      "Nairobi",
			Description: "Luxury apartments with modern finishes and easy access to the Westlands business district.",
			TotalUnits:  18,
			Amenities:   []string{"Gym", "Parking", "Solar Water Heating", "High-Speed Internet", "Rooftop Terrace", "Concierge Service"},
		}},
		{"prop3", "landlord3", Property{
			Name:        "Lavington Green Apartments",
			Address:     "789 Lavington Crescent",
			City:        "Nairobi",
			County:      "Nairobi",
			Description: "Serene environment with lush gardens, suited to families looking for quiet living with city access.",
			TotalUnits:  30,
			Amenities:   []string{"Children Playground", "Gym", "Parking", "Garden", "Backup Generator", "High-Speed Internet"},
		}},
	}
	for _, p := range properties {
		property := p.property
		property.LandlordID = state.Get(p.landlord)
		created, _, err := state.svc.CreateProperty(ctx, property)
		if err != nil {
			return err
		}
		state.Set(p.key, created.ID)
		state.Record(domain.EntityProperty, created.ID)
	}
	return nil
}

func seedUnits(ctx context.Context, state *WorkflowState) error {
	createUnit := func(key string, unit Unit) error {
		created, _, err := state.svc.CreateUnit(ctx, unit)
		if err != nil {
			return err
		}
		if key != "" {
			state.Set(key, created.ID)
		}
		state.Record(domain.EntityUnit, created.ID)
		return nil
	}

	prop1 := state.Get("prop1")
	for floor := 1; floor <= 4; floor++ {
		key := ""
		if floor == 1 {
			key = "unit_a101"
		}
		if err := createUnit(key, Unit{
			PropertyID: prop1, UnitNumber: fmt.Sprintf("A-%d01", floor),
			Type: domain.UnitTypeStudio, Bedrooms: 0, Bathrooms: 1, SquareMeters: 30,
			RentAmount: 18000, DepositAmount: 36000, Floor: floor,
			Amenities: []string{"Built-in Wardrobes", "Balcony"},
		}); err != nil {
			return err
		}
		key = ""
		if floor == 1 {
			key = "unit_a102"
		}
		if err := createUnit(key, Unit{
			PropertyID: prop1, UnitNumber: fmt.Sprintf("A-%d02", floor),
			Type: domain.UnitTypeOneBR, Bedrooms: 1, Bathrooms: 1, SquareMeters: 45,
			RentAmount: 25000, DepositAmount: 50000, Floor: floor,
			Amenities: []string{"Balcony", "Built-in Wardrobes", "Open Kitchen"},
		}); err != nil {
			return err
		}
		if err := createUnit("", Unit{
			PropertyID: prop1, UnitNumber: fmt.Sprintf("A-%d03", floor),
			Type: domain.UnitTypeTwoBR, Bedrooms: 2, Bathrooms: 2, SquareMeters: 65,
			RentAmount: 35000, DepositAmount: 70000, Floor: floor,
			Amenities: []string{"Balcony", "Built-in Wardrobes", "DSQ", "Master Ensuite"},
		}); err != nil {
			return err
		}
	}

	prop2 := state.Get("prop2")
	for floor := 1; floor <= 3; floor++ {
		key := ""
		if floor == 1 {
			key = "unit_b101"
		}
		if err := createUnit(key, Unit{
			PropertyID: prop2, UnitNumber: fmt.Sprintf("B-%d01", floor),
			Type: domain.UnitTypeOneBR, Bedrooms: 1, Bathrooms: 1, SquareMeters: 50,
			RentAmount: 30000, DepositAmount: 60000, Floor: floor,
			Amenities: []string{"City View", "Built-in Wardrobes", "High-End Finishes"},
		}); err != nil {
			return err
		}
		key = ""
		if floor == 1 {
			key = "unit_b102"
		}
		if err := createUnit(key, Unit{
			PropertyID: prop2, UnitNumber: fmt.Sprintf("B-%d02", floor),
			Type: domain.UnitTypeTwoBR, Bedrooms: 2, Bathrooms: 2, SquareMeters: 75,
			RentAmount: 45000, DepositAmount: 90000, Floor: floor,
			Amenities: []string{"City View", "DSQ", "Master Ensuite", "Walk-in Closet"},
		}); err != nil {
			return err
		}
	}

	prop3 := state.Get("prop3")
	for floor := 1; floor <= 3; floor++ {
		if err := createUnit("", Unit{
			PropertyID: prop3, UnitNumber: fmt.Sprintf("C-%d01", floor),
			Type: domain.UnitTypeTwoBR, Bedrooms: 2, Bathrooms: 1, SquareMeters: 60,
			RentAmount: 28000, DepositAmount: 56000, Floor: floor,
			Amenities: []string{"Garden View", "Built-in Wardrobes", "Family Bathroom"},
		}); err != nil {
			return err
		}
		if err := createUnit("", Unit{
			PropertyID: prop3, UnitNumber: fmt.Sprintf("C-%d02", floor),
			Type: domain.UnitTypeThreeBR, Bedrooms: 3, Bathrooms: 2, SquareMeters: 85,
			RentAmount: 40000, DepositAmount: 80000, Floor: floor,
			Amenities: []string{"Garden View", "DSQ", "Master Ensuite", "Family Room"},
		}); err != nil {
			return err
		}
	}
	return nil
}

func seedApplications(ctx context.Context, state *WorkflowState) error {
	now := time.Now().UTC()
	applications := []Application{
		{
			UnitID:           state.Get("unit_a102"),
			TenantID:         state.Get("tenant1"),
			EmploymentStatus: "Employed",
			MonthlyIncome:    80000,
			EmergencyContact: "Jane Ochieng",
			EmergencyPhone:   "+254 744 678 902",
			MoveInDate:       now.AddDate(0, 0, 30),
		},
		{
			UnitID:           state.Get("unit_b102"),
			TenantID:         state.Get("tenant2"),
			EmploymentStatus: "Self-Employed",
			MonthlyIncome:    120000,
			EmergencyContact: "Robert Akinyi",
			EmergencyPhone:   "+254 755 789 013",
			MoveInDate:       now.AddDate(0, 0, 45),
		},
	}
	for _, a := range applications {
		created, _, err := state.svc.SubmitApplication(ctx, a)
		if err != nil {
			return err
		}
		state.Record(domain.EntityApplication, created.ID)
	}
	return nil
}

func seedLeases(ctx context.Context, state *WorkflowState) error {
	now := time.Now().UTC()
	leases := []struct {
		key   string
		lease Lease
	}{
		{"lease1", Lease{
			UnitID:           state.Get("unit_a101"),
			TenantID:         state.Get("tenant3"),
			StartDate:        now.AddDate(0, 0, -60),
			EndDate:          now.AddDate(0, 0, 305),
			RentAmount:       18000,
			DepositAmount:    36000,
			PaymentFrequency: "monthly",
			Terms:            "Standard lease agreement for 12 months with option to renew.",
		}},
		{"lease2", Lease{
			UnitID:           state.Get("unit_b101"),
			TenantID:         state.Get("tenant4"),
			StartDate:        now.AddDate(0, 0, -30),
			EndDate:          now.AddDate(0, 0, 335),
			RentAmount:       30000,
			DepositAmount:    60000,
			PaymentFrequency: "monthly",
			Terms:            "Premium lease agreement with included parking space.",
		}},
	}
	for _, l := range leases {
		created, _, err := state.svc.CreateLease(ctx, l.lease)
		if err != nil {
			return err
		}
		if _, _, err := state.svc.ActivateLease(ctx, created.ID); err != nil {
			return err
		}
		state.Set(l.key, created.ID)
		state.Record(domain.EntityLease, created.ID)
	}
	return nil
}

func seedPayments(ctx context.Context, state *WorkflowState) error {
	now := time.Now().UTC()
	type pastPayment struct {
		lease  string
		tenant string
		amount int64
		method domain.PaymentMethod
		ref    string
	}
	for i := 0; i < 3; i++ {
		history := []pastPayment{
			{"lease1", "tenant3", 18000, domain.PaymentMethodMpesa, fmt.Sprintf("MPESA%d%d", now.Unix(), i)},
			{"lease2", "tenant4", 30000, domain.PaymentMethodBankTransfer, fmt.Sprintf("BANK%d%d", now.Unix(), i)},
		}
		for _, p := range history {
			created, _, err := state.svc.RecordPayment(ctx, Payment{
				LeaseID:        state.Get(p.lease),
				TenantID:       state.Get(p.tenant),
				Amount:         p.amount,
				DueDate:        now.AddDate(0, i-2, 0),
				Method:         p.method,
				TransactionRef: p.ref,
			})
			if err != nil {
				return err
			}
			if _, _, err := state.svc.MarkPaymentPaid(ctx, created.ID); err != nil {
				return err
			}
			state.Record(domain.EntityPayment, created.ID)
		}
	}

	pending := []pastPayment{
		{"lease1", "tenant3", 18000, domain.PaymentMethodMpesa, ""},
		{"lease2", "tenant4", 30000, domain.PaymentMethodBankTransfer, ""},
	}
	for _, p := range pending {
		created, _, err := state.svc.RecordPayment(ctx, Payment{
			LeaseID:  state.Get(p.lease),
			TenantID: state.Get(p.tenant),
			Amount:   p.amount,
			DueDate:  now.AddDate(0, 1, 0),
			Method:   p.method,
		})
		if err != nil {
			return err
		}
		state.Record(domain.EntityPayment, created.ID)
	}
	return nil
}

func seedMaintenance(ctx context.Context, state *WorkflowState) error {
	requests := []MaintenanceRequest{
		{
			UnitID:      state.Get("unit_a101"),
			TenantID:    state.Get("tenant3"),
			Category:    "plumbing",
			Title:       "Leaking Kitchen Tap",
			Description: "The kitchen tap has been leaking for the past 2 days. Needs urgent attention.",
			Priority:    domain.PriorityMedium,
		},
		{
			UnitID:      state.Get("unit_b101"),
			TenantID:    state.Get("tenant4"),
			Category:    "electrical",
			Title:       "Bedroom Light Not Working",
			Description: "The main bedroom light fixture stopped working. Changed bulb but still not working.",
			Priority:    domain.PriorityLow,
		},
		{
			UnitID:      state.Get("unit_a102"),
			TenantID:    state.Get("tenant1"),
			Category:    "hvac",
			Title:       "AC Not Cooling Properly",
			Description: "Air conditioner is running but not cooling the room effectively.",
			Priority:    domain.PriorityHigh,
		},
	}
	for _, r := range requests {
		created, _, err := state.svc.OpenMaintenanceRequest(ctx, r)
		if err != nil {
			return err
		}
		state.Record(domain.EntityMaintenanceRequest, created.ID)
	}
	return nil
}

func seedMessages(ctx context.Context, state *WorkflowState) error {
	messages := []Message{
		{
			SenderID:   state.Get("tenant1"),
			ReceiverID: state.Get("landlord1"),
			Subject:    "Question about parking",
			Content:    "Hello, I wanted to ask if there are additional parking spaces available for visitors?",
		},
		{
			SenderID:   state.Get("landlord1"),
			ReceiverID: state.Get("tenant1"),
			Subject:    "Re: Question about parking",
			Content:    "Hi! Yes, we have visitor parking available at KES 200 per day. First 2 hours are free.",
		},
		{
			SenderID:   state.Get("tenant3"),
			ReceiverID: state.Get("landlord1"),
			Subject:    "Maintenance Request Follow-up",
			Content:    "Just following up on the leaking tap issue. Is someone coming to fix it today?",
		},
		{
			SenderID:   state.Get("tenant2"),
			ReceiverID: state.Get("landlord2"),
			Subject:    "Application Status",
			Content:    "Hi, I submitted an application for unit B-102. Wanted to check on the status.",
		},
	}
	for _, m := range messages {
		created, _, err := state.svc.SendMessage(ctx, m)
		if err != nil {
			return err
		}
		state.Record(domain.EntityMessage, created.ID)
	}
	return nil
}
