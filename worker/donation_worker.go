package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"sola-donation-api/database"
	"sola-donation-api/models"
	"sola-donation-api/queue"
	"sola-donation-api/services/email"
)

// Worker drains background jobs: donor receipt emails and donation records.
// Payment submission itself is never queued; only after-the-fact work is.
type Worker struct {
	queue        *queue.Queue
	db           *database.Connection
	emailService email.EmailSender
	shutdown     chan struct{}
	isRunning    bool
}

func NewWorker(q *queue.Queue, db *database.Connection, es email.EmailSender) *Worker {
	return &Worker{
		queue:        q,
		db:           db,
		emailService: es,
		shutdown:     make(chan struct{}),
	}
}

// Start begins processing jobs with the given number of goroutines.
func (w *Worker) Start(concurrency int) {
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		go w.processJobs(i)
	}
	go w.promoteDelayedJobs()

	log.Printf("Started %d worker goroutines", concurrency)
}

// Stop signals the worker to stop processing jobs.
func (w *Worker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("Stopping worker...")
	close(w.shutdown)
	w.isRunning = false
}

func (w *Worker) processJobs(workerID int) {
	log.Printf("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			cancel()

			if err != nil {
				log.Printf("Worker %d: Error dequeuing job: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if job == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			log.Printf("Worker %d processing job %s of type %s", workerID, job.ID, job.Type)

			if jobErr := w.processJob(job); jobErr != nil {
				log.Printf("Worker %d: Error processing job %s: %v", workerID, job.ID, jobErr)

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if failErr := w.queue.FailJob(ctx, job, jobErr); failErr != nil {
					log.Printf("Worker %d: Error marking job %s as failed: %v", workerID, job.ID, failErr)
				}
				cancel()
				continue
			}

			ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			if completeErr := w.queue.CompleteJob(ctx, job); completeErr != nil {
				log.Printf("Worker %d: Error marking job %s as complete: %v", workerID, job.ID, completeErr)
			}
			cancel()
		}
	}
}

// promoteDelayedJobs periodically moves due retries back to the main queue.
func (w *Worker) promoteDelayedJobs() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				log.Printf("Error promoting delayed jobs: %v", err)
			}
			cancel()
		}
	}
}

func (w *Worker) processJob(job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeSendReceipt:
		return w.processSendReceipt(job)
	case queue.JobTypeRecordDonation:
		return w.processRecordDonation(job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *Worker) processSendReceipt(job *queue.Job) error {
	to := stringField(job, "email")
	if to == "" {
		// Nothing to send to; drop the job rather than retrying forever.
		log.Printf("Job %s has no donor email, skipping receipt", job.ID)
		return nil
	}

	name := stringField(job, "donor_name")
	amount := stringField(job, "amount")
	currency := stringField(job, "currency")

	if stringField(job, "kind") == "recurring" {
		chargeDay := intField(job, "charge_day")
		startDate := stringField(job, "start_date")
		return w.emailService.SendRecurringConfirmationEmail(to, name, amount, currency, chargeDay, startDate)
	}

	return w.emailService.SendReceiptEmail(to, name, amount, currency, stringField(job, "ref_num"))
}

func (w *Worker) processRecordDonation(job *queue.Job) error {
	amount, _ := job.Data["amount_value"].(float64)

	rec := &models.DonationRecord{
		RefNum:     stringField(job, "ref_num"),
		Invoice:    stringField(job, "invoice"),
		Amount:     amount,
		Currency:   stringField(job, "currency"),
		DonorEmail: stringField(job, "email"),
		DonorName:  stringField(job, "donor_name"),
		MaskedCard: stringField(job, "masked_card"),
		CardType:   stringField(job, "card_type"),
		CreatedAt:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := w.db.SaveDonation(ctx, rec)
	return err
}

func stringField(job *queue.Job, key string) string {
	value, _ := job.Data[key].(string)
	return value
}

func intField(job *queue.Job, key string) int {
	// JSON round-trips numbers as float64.
	if f, ok := job.Data[key].(float64); ok {
		return int(f)
	}
	return 0
}
