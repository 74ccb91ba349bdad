package app_test

import (
	"context"
	"testing"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/app"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/catalog"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	perfectSkills = model.Skills{100, 100, 100, 100, 100}
	mediumSkills  = model.Skills{50, 50, 50, 50, 50}
)

func newTestEngine() *app.Engine {
	e, err := app.New()
	if err != nil {
		panic(err)
	}
	return e
}

func TestEngine_Registration(t *testing.T) {
	Convey("Given a fresh engine", t, func() {
		ctx := context.Background()
		e := newTestEngine()

		Convey("When a customer and a freelancer register", func() {
			So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
			So(e.RegisterFreelancer(ctx, "bob", "web_dev", 100, perfectSkills), ShouldBeNil)

			Convey("Then both are queryable", func() {
				c, err := e.QueryCustomer(ctx, "alice")
				So(err, ShouldBeNil)
				So(c.LoyaltyTier, ShouldEqual, model.Bronze)

				f, err := e.QueryFreelancer(ctx, "bob")
				So(err, ShouldBeNil)
				So(f.Category, ShouldEqual, catalog.WebDev)
				So(f.AverageRating, ShouldAlmostEqual, 5.0, 1e-9)
			})

			Convey("And the shared id namespace rejects reuse either way", func() {
				So(e.RegisterCustomer(ctx, "alice"), ShouldEqual, app.ErrDuplicateID)
				So(e.RegisterCustomer(ctx, "bob"), ShouldEqual, app.ErrDuplicateID)
				So(e.RegisterFreelancer(ctx, "alice", "web_dev", 50, mediumSkills), ShouldEqual, app.ErrDuplicateID)
				So(e.RegisterFreelancer(ctx, "bob", "paint", 50, mediumSkills), ShouldEqual, app.ErrDuplicateID)
			})
		})

		Convey("When registrations carry bad arguments", func() {
			Convey("Then each is rejected with its sentinel", func() {
				So(e.RegisterCustomer(ctx, ""), ShouldEqual, app.ErrInvalidID)
				So(e.RegisterFreelancer(ctx, "", "web_dev", 100, perfectSkills), ShouldEqual, app.ErrInvalidID)
				So(e.RegisterFreelancer(ctx, "f1", "carpentry", 100, perfectSkills), ShouldEqual, app.ErrUnknownCategory)
				So(e.RegisterFreelancer(ctx, "f1", "web_dev", 0, perfectSkills), ShouldEqual, app.ErrInvalidPrice)
				So(e.RegisterFreelancer(ctx, "f1", "web_dev", 100, model.Skills{101, 0, 0, 0, 0}), ShouldEqual, app.ErrInvalidSkill)
				So(e.RegisterFreelancer(ctx, "f1", "web_dev", 100, model.Skills{-1, 0, 0, 0, 0}), ShouldEqual, app.ErrInvalidSkill)
			})
		})
	})
}

func TestEngine_RequestJob(t *testing.T) {
	Convey("Given ranked freelancers in one category", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "hi", "web_dev", 120, perfectSkills), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "mid", "web_dev", 80, mediumSkills), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "lo", "web_dev", 40, model.Skills{}), ShouldBeNil)

		Convey("When a job is requested with a generous limit", func() {
			res, err := e.RequestJob(ctx, "alice", "web_dev", 5)

			Convey("Then candidates come back in rank order and the best is hired", func() {
				So(err, ShouldBeNil)
				So(len(res.Candidates), ShouldEqual, 3)
				So(res.Candidates[0].ID, ShouldEqual, "hi")
				So(res.Candidates[1].ID, ShouldEqual, "mid")
				So(res.Candidates[2].ID, ShouldEqual, "lo")
				So(res.Candidates[0].Composite, ShouldEqual, 10000)
				So(res.BestID, ShouldEqual, "hi")

				f, _ := e.QueryFreelancer(ctx, "hi")
				So(f.Available, ShouldBeFalse)
				So(f.EmployerID, ShouldEqual, "alice")
			})

			Convey("And the others survive in the heap for the next request", func() {
				next, err := e.RequestJob(ctx, "alice", "web_dev", 5)
				So(err, ShouldBeNil)
				So(next.BestID, ShouldEqual, "mid")
				So(len(next.Candidates), ShouldEqual, 2)
			})
		})

		Convey("When the limit truncates the listing", func() {
			res, err := e.RequestJob(ctx, "alice", "web_dev", 1)

			Convey("Then only the best is listed", func() {
				So(err, ShouldBeNil)
				So(len(res.Candidates), ShouldEqual, 1)
				So(res.BestID, ShouldEqual, "hi")
			})
		})

		Convey("When the request is invalid", func() {
			Convey("Then validation fires before any matching", func() {
				_, err := e.RequestJob(ctx, "nobody", "web_dev", 3)
				So(err, ShouldEqual, app.ErrUnknownCustomer)
				_, err = e.RequestJob(ctx, "alice", "web_dev", 0)
				So(err, ShouldEqual, app.ErrInvalidLimit)
				_, err = e.RequestJob(ctx, "alice", "carpentry", 3)
				So(err, ShouldEqual, app.ErrUnknownCategory)
			})
		})

		Convey("When no freelancer serves the category", func() {
			_, err := e.RequestJob(ctx, "alice", "plumbing", 3)

			Convey("Then there is no match", func() {
				So(err, ShouldEqual, app.ErrNoMatch)
			})
		})
	})
}

func TestEngine_CompleteAndRate(t *testing.T) {
	Convey("Given an active employment at price 100", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "bob", "web_dev", 100, perfectSkills), ShouldBeNil)
		_, err := e.Employ(ctx, "alice", "bob")
		So(err, ShouldBeNil)

		Convey("When the job completes with a 5 rating", func() {
			customerID, err := e.CompleteAndRate(ctx, "bob", 5)

			Convey("Then the BRONZE customer pays full price", func() {
				So(err, ShouldBeNil)
				So(customerID, ShouldEqual, "alice")

				c, _ := e.QueryCustomer(ctx, "alice")
				So(c.TotalSpent, ShouldEqual, 100)
				So(c.LoyaltyTier, ShouldEqual, model.Bronze)

				f, _ := e.QueryFreelancer(ctx, "bob")
				So(f.Available, ShouldBeTrue)
				So(f.CompletedJobs, ShouldEqual, 1)
			})

			Convey("And a second completion has no employment to finish", func() {
				_, err := e.CompleteAndRate(ctx, "bob", 5)
				So(err, ShouldEqual, app.ErrNotEmployed)
			})
		})

		Convey("When the rating is out of range", func() {
			_, err := e.CompleteAndRate(ctx, "bob", 6)

			Convey("Then nothing is charged or completed", func() {
				So(err, ShouldEqual, app.ErrInvalidRating)
				c, _ := e.QueryCustomer(ctx, "alice")
				So(c.TotalSpent, ShouldEqual, 0)
				f, _ := e.QueryFreelancer(ctx, "bob")
				So(f.Available, ShouldBeFalse)
			})
		})

		Convey("When the freelancer is unknown", func() {
			_, err := e.CompleteAndRate(ctx, "nobody", 5)

			Convey("Then the lookup fails cleanly", func() {
				So(err, ShouldEqual, app.ErrUnknownFreelancer)
			})
		})
	})
}

func TestEngine_LoyaltyProgression(t *testing.T) {
	Convey("Given a customer spending past the SILVER threshold", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "bob", "web_dev", 600, perfectSkills), ShouldBeNil)

		_, err := e.Employ(ctx, "alice", "bob")
		So(err, ShouldBeNil)
		_, err = e.CompleteAndRate(ctx, "bob", 5)
		So(err, ShouldBeNil)

		Convey("Then the tier stays stale until the monthly tick", func() {
			c, _ := e.QueryCustomer(ctx, "alice")
			So(c.TotalSpent, ShouldEqual, 600)
			So(c.LoyaltyTier, ShouldEqual, model.Bronze)

			e.SimulateMonth(ctx)
			c, _ = e.QueryCustomer(ctx, "alice")
			So(c.LoyaltyTier, ShouldEqual, model.Silver)
		})

		Convey("When the tier has refreshed to SILVER", func() {
			e.SimulateMonth(ctx)
			_, err := e.Employ(ctx, "alice", "bob")
			So(err, ShouldBeNil)
			_, err = e.CompleteAndRate(ctx, "bob", 5)
			So(err, ShouldBeNil)

			Convey("Then the next payment carries the 5% discount, floored", func() {
				c, _ := e.QueryCustomer(ctx, "alice")
				So(c.TotalSpent, ShouldEqual, 600+570)
			})
		})

		Convey("When customer cancellations erode effective spend", func() {
			_, err := e.Employ(ctx, "alice", "bob")
			So(err, ShouldBeNil)
			So(e.CancelByCustomer(ctx, "alice", "bob"), ShouldBeNil)
			e.SimulateMonth(ctx)

			Convey("Then 600 spent minus one 250 deduction is BRONZE again", func() {
				c, _ := e.QueryCustomer(ctx, "alice")
				So(c.LoyaltyTier, ShouldEqual, model.Bronze)
			})
		})
	})
}

func TestEngine_CancellationBan(t *testing.T) {
	Convey("Given a freelancer cancelling repeatedly in one month", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "bob", "web_dev", 100, perfectSkills), ShouldBeNil)

		cancelOnce := func() *app.CancelResult {
			_, err := e.Employ(ctx, "alice", "bob")
			So(err, ShouldBeNil)
			res, err := e.CancelByFreelancer(ctx, "bob")
			So(err, ShouldBeNil)
			return res
		}

		Convey("When the fifth cancellation lands", func() {
			for i := 0; i < 4; i++ {
				So(cancelOnce().Banned, ShouldBeFalse)
			}
			res := cancelOnce()

			Convey("Then the ban trips immediately", func() {
				So(res.Banned, ShouldBeTrue)
				So(res.CustomerID, ShouldEqual, "alice")
				f, _ := e.QueryFreelancer(ctx, "bob")
				So(f.PlatformBanned, ShouldBeTrue)
			})

			Convey("And the banned freelancer can no longer be hired", func() {
				_, err := e.Employ(ctx, "alice", "bob")
				So(err, ShouldEqual, app.ErrFreelancerBanned)

				_, err = e.RequestJob(ctx, "alice", "web_dev", 3)
				So(err, ShouldEqual, app.ErrNoMatch)
			})

			Convey("And the monthly tick does not lift the ban", func() {
				e.SimulateMonth(ctx)
				f, _ := e.QueryFreelancer(ctx, "bob")
				So(f.PlatformBanned, ShouldBeTrue)
			})
		})

		Convey("When a cancel arrives without an employment", func() {
			_, err := e.CancelByFreelancer(ctx, "bob")

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, app.ErrNotEmployed)
			})
		})
	})
}

func TestEngine_CancelByCustomer(t *testing.T) {
	Convey("Given an active employment", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterCustomer(ctx, "carol"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "bob", "web_dev", 100, perfectSkills), ShouldBeNil)
		_, err := e.Employ(ctx, "alice", "bob")
		So(err, ShouldBeNil)

		Convey("When the employing customer cancels", func() {
			So(e.CancelByCustomer(ctx, "alice", "bob"), ShouldBeNil)

			Convey("Then the freelancer is freed without penalty", func() {
				f, _ := e.QueryFreelancer(ctx, "bob")
				So(f.Available, ShouldBeTrue)
				So(f.CancelledJobs, ShouldEqual, 0)
				So(f.AverageRating, ShouldAlmostEqual, 5.0, 1e-9)
			})
		})

		Convey("When a different customer tries to cancel", func() {
			err := e.CancelByCustomer(ctx, "carol", "bob")

			Convey("Then the employment relation is enforced", func() {
				So(err, ShouldEqual, app.ErrWrongEmployer)
			})
		})

		Convey("When the freelancer is not employed at all", func() {
			So(e.CancelByCustomer(ctx, "alice", "bob"), ShouldBeNil)
			err := e.CancelByCustomer(ctx, "alice", "bob")

			Convey("Then the second cancel fails", func() {
				So(err, ShouldEqual, app.ErrNotEmployed)
			})
		})
	})
}

func TestEngine_ServiceChangeDeferral(t *testing.T) {
	Convey("Given a queued service change", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "bob", "web_dev", 100, perfectSkills), ShouldBeNil)

		old, err := e.ChangeService(ctx, "bob", "tutoring", 250)
		So(err, ShouldBeNil)
		So(old, ShouldEqual, catalog.WebDev)

		Convey("Then before the tick the freelancer still serves web_dev", func() {
			_, err := e.RequestJob(ctx, "alice", "tutoring", 3)
			So(err, ShouldEqual, app.ErrNoMatch)

			res, err := e.RequestJob(ctx, "alice", "web_dev", 3)
			So(err, ShouldBeNil)
			So(res.BestID, ShouldEqual, "bob")
		})

		Convey("When the monthly tick applies the change", func() {
			e.SimulateMonth(ctx)

			Convey("Then the freelancer moved to the tutoring heap", func() {
				_, err := e.RequestJob(ctx, "alice", "web_dev", 3)
				So(err, ShouldEqual, app.ErrNoMatch)

				res, err := e.RequestJob(ctx, "alice", "tutoring", 3)
				So(err, ShouldBeNil)
				So(res.BestID, ShouldEqual, "bob")
				So(res.Candidates[0].Price, ShouldEqual, 250)
			})
		})

		Convey("When the change targets bad arguments", func() {
			_, err := e.ChangeService(ctx, "bob", "carpentry", 250)
			So(err, ShouldEqual, app.ErrUnknownCategory)
			_, err = e.ChangeService(ctx, "bob", "tutoring", -5)
			So(err, ShouldEqual, app.ErrInvalidPrice)
			_, err = e.ChangeService(ctx, "nobody", "tutoring", 250)
			So(err, ShouldEqual, app.ErrUnknownFreelancer)
		})
	})
}

func TestEngine_Blacklist(t *testing.T) {
	Convey("Given a customer and a freelancer", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "bob", "web_dev", 100, perfectSkills), ShouldBeNil)

		Convey("When the freelancer is blacklisted", func() {
			So(e.Blacklist(ctx, "alice", "bob"), ShouldBeNil)

			Convey("Then direct employment is refused", func() {
				_, err := e.Employ(ctx, "alice", "bob")
				So(err, ShouldEqual, app.ErrBlacklisted)
			})

			Convey("And job requests skip the blacklisted freelancer", func() {
				_, err := e.RequestJob(ctx, "alice", "web_dev", 3)
				So(err, ShouldEqual, app.ErrNoMatch)
			})

			Convey("And other customers are unaffected", func() {
				So(e.RegisterCustomer(ctx, "carol"), ShouldBeNil)
				res, err := e.RequestJob(ctx, "carol", "web_dev", 3)
				So(err, ShouldBeNil)
				So(res.BestID, ShouldEqual, "bob")
			})

			Convey("And a repeat blacklist is an error", func() {
				So(e.Blacklist(ctx, "alice", "bob"), ShouldEqual, app.ErrAlreadyBlacklisted)
			})

			Convey("When unblacklisted again", func() {
				So(e.Unblacklist(ctx, "alice", "bob"), ShouldBeNil)

				Convey("Then hiring works again", func() {
					_, err := e.Employ(ctx, "alice", "bob")
					So(err, ShouldBeNil)
				})
			})
		})

		Convey("When unblacklisting someone never listed", func() {
			err := e.Unblacklist(ctx, "alice", "bob")

			Convey("Then the strict removal fails", func() {
				So(err, ShouldEqual, app.ErrNotBlacklisted)
			})
		})
	})
}

func TestEngine_UpdateSkillAndHistory(t *testing.T) {
	Convey("Given two freelancers in one category", t, func() {
		ctx := context.Background()
		e := newTestEngine()
		So(e.RegisterCustomer(ctx, "alice"), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "low", "web_dev", 100, mediumSkills), ShouldBeNil)
		So(e.RegisterFreelancer(ctx, "high", "web_dev", 100, perfectSkills), ShouldBeNil)

		Convey("When the weaker one overwrites its skills upward", func() {
			_, err := e.UpdateSkill(ctx, "low", perfectSkills)
			So(err, ShouldBeNil)

			Convey("Then ranking ties break by id and the update wins later slots", func() {
				res, err := e.RequestJob(ctx, "alice", "web_dev", 2)
				So(err, ShouldBeNil)
				So(res.Candidates[0].ID, ShouldEqual, "high")
				So(res.Candidates[1].ID, ShouldEqual, "low")
			})
		})

		Convey("When skills go out of range", func() {
			_, err := e.UpdateSkill(ctx, "low", model.Skills{50, 50, 50, 50, 200})

			Convey("Then the update is rejected", func() {
				So(err, ShouldEqual, app.ErrInvalidSkill)
			})
		})

		Convey("When employments open and close", func() {
			_, err := e.Employ(ctx, "alice", "high")
			So(err, ShouldBeNil)
			_, err = e.CompleteAndRate(ctx, "high", 4)
			So(err, ShouldBeNil)
			_, err = e.Employ(ctx, "alice", "low")
			So(err, ShouldBeNil)

			Convey("Then the audit history keeps every record", func() {
				hist := e.History()
				So(len(hist), ShouldEqual, 2)
				So(hist[0].State, ShouldEqual, model.Completed)
				So(hist[1].State, ShouldEqual, model.Active)
				So(hist[0].AuditID, ShouldNotEqual, hist[1].AuditID)
			})
		})
	})
}
